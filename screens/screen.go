package screens

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/melkeydev/logistics-admin/events"
	"github.com/melkeydev/logistics-admin/render"
	"github.com/melkeydev/logistics-admin/types"
)

// Store is the part of a connector a screen needs.
type Store interface {
	Select(ctx context.Context, table string, opts types.SelectOptions) (*types.ResultSet, error)
	Update(ctx context.Context, table, idColumn string, id any, values types.Row) (int64, error)
}

// Filter narrows the list: an exact status and a substring of the kind's
// search column. Empty fields are ignored.
type Filter struct {
	Status string `json:"status,omitempty" query:"status"`
	Search string `json:"search,omitempty" query:"q"`
}

type State struct {
	Kind    Kind             `json:"kind"`
	Filter  Filter           `json:"filter"`
	Rows    *types.ResultSet `json:"rows"`
	Loaded  bool             `json:"loaded"`
	Error   string           `json:"error,omitempty"`
	Message string           `json:"message,omitempty"`
}

// Screen is the list state of one entity kind.
type Screen struct {
	kind      Kind
	store     Store
	publisher events.Publisher
	logger    *slog.Logger
	limit     int

	mu      sync.Mutex
	filter  Filter
	rows    *types.ResultSet
	loaded  bool
	err     string
	message string
}

// NewScreen returns the list state of kind. limit is clamped to
// 1..types.MaxRows.
func NewScreen(kind Kind, store Store, publisher events.Publisher, logger *slog.Logger, limit int) *Screen {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Screen{kind: kind, store: store, publisher: publisher, logger: logger, limit: types.ClampLimit(limit)}
}

func (s *Screen) Kind() Kind {
	return s.kind
}

// Load replaces the list with the rows matching f.
func (s *Screen) Load(ctx context.Context, f Filter) error {
	f.Status = strings.TrimSpace(f.Status)
	f.Search = strings.TrimSpace(f.Search)
	if f.Status != "" && !s.kind.ValidStatus(f.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
	}

	rs, err := s.store.Select(ctx, s.kind.Table, s.selectOptions(f))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.filter = f
	if err != nil {
		s.err = fmt.Sprintf("Failed to fetch %s", s.kind.Name)
		s.logger.Error("screen fetch failed", "kind", s.kind.Name, "error", err)
		return fmt.Errorf("failed to fetch %s: %w", s.kind.Name, err)
	}
	s.rows = rs
	s.loaded = true
	s.err = ""
	s.message = ""
	return nil
}

func (s *Screen) selectOptions(f Filter) types.SelectOptions {
	opts := types.SelectOptions{Limit: s.limit}
	if f.Status != "" {
		opts.Filters = append(opts.Filters, types.Filter{Column: "status", Op: types.OpEq, Value: f.Status})
	}
	if f.Search != "" && s.kind.SearchColumn != "" {
		opts.Filters = append(opts.Filters, types.Filter{
			Column: s.kind.SearchColumn,
			Op:     types.OpLike,
			Value:  "%" + types.EscapeLike(f.Search) + "%",
		})
	}
	return opts
}

// UpdateStatus sets the status of record id. The status is checked against
// the kind before anything is sent. On success the local copy of the record
// is patched; when no row matched the list is fetched again.
func (s *Screen) UpdateStatus(ctx context.Context, id any, status string) error {
	values, err := s.kind.StatusValues(status)
	if err != nil {
		return err
	}

	n, err := s.store.Update(ctx, s.kind.Table, "id", id, values)
	if err != nil {
		s.setError(fmt.Sprintf("Failed to update %s status", s.kind.Name))
		s.logger.Error("status update failed", "kind", s.kind.Name, "id", id, "status", status, "error", err)
		return fmt.Errorf("failed to update %s %v: %w", s.kind.Name, id, err)
	}

	if n == 0 {
		s.mu.Lock()
		f := s.filter
		s.mu.Unlock()
		s.logger.Warn("status update matched no rows, reloading", "kind", s.kind.Name, "id", id)
		if err := s.Load(ctx, f); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s %v", types.ErrNotFound, s.kind.Name, id)
	}

	s.patch(ctx, id, status)

	if err := s.publisher.Publish(ctx, events.Event{
		Type:   events.StatusUpdated,
		Table:  s.kind.Table,
		ID:     fmt.Sprint(id),
		Status: status,
	}); err != nil {
		s.logger.Warn("failed to publish status change", "kind", s.kind.Name, "error", err)
	}
	return nil
}

// patch re-reads the updated record so backend assigned columns such as the
// completion time are shown, and swaps it into the list.
func (s *Screen) patch(ctx context.Context, id any, status string) {
	fresh, err := s.store.Select(ctx, s.kind.Table, types.SelectOptions{
		Filters: []types.Filter{{Column: "id", Op: types.OpEq, Value: id}},
		Limit:   1,
	})
	if err != nil {
		s.logger.Warn("point read after update failed", "kind", s.kind.Name, "id", id, "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = ""
	s.message = fmt.Sprintf("Status updated to %s", status)
	if s.rows == nil {
		return
	}

	// copy on write: State hands out the previous slice
	rows := make([]types.Row, len(s.rows.Rows))
	copy(rows, s.rows.Rows)
	for i, row := range rows {
		if !SameID(row["id"], id) {
			continue
		}
		if err == nil && len(fresh.Rows) == 1 {
			rows[i] = fresh.Rows[0]
		} else {
			patched := make(types.Row, len(row))
			for k, v := range row {
				patched[k] = v
			}
			patched["status"] = status
			rows[i] = patched
		}
	}
	s.rows = &types.ResultSet{Columns: s.rows.Columns, Rows: rows}
}

func (s *Screen) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
	s.message = ""
}

func (s *Screen) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Kind:    s.kind,
		Filter:  s.filter,
		Rows:    s.rows,
		Loaded:  s.loaded,
		Error:   s.err,
		Message: s.message,
	}
}

func (s *Screen) Grid() render.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return render.Build(s.rows)
}

// ParseID turns a path segment into the id value sent to the backend.
// Integer ids become int64, anything else (uuids) stays text.
func ParseID(raw string) any {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	return raw
}

// SameID compares ids that may have arrived with different Go types.
func SameID(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}
