// Package viewer is the generic table browser: discover tables once, select
// one, fetch a capped page of its rows.
package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/melkeydev/logistics-admin/render"
	"github.com/melkeydev/logistics-admin/types"
)

// MaxRows is the hard cap on rows fetched for one table.
const MaxRows = types.MaxRows

// FetchError is a failed row fetch. It only concerns Table: the table list
// and other selections stay usable.
type FetchError struct {
	Table string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s data: %v", e.Table, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Source is the part of a connector the viewer reads from.
type Source interface {
	ListTables(ctx context.Context) ([]string, error)
	Select(ctx context.Context, table string, opts types.SelectOptions) (*types.ResultSet, error)
}

// State is a point in time copy of the viewer.
type State struct {
	Tables     []string         `json:"tables"`
	Selected   string           `json:"selected"`
	RowsTable  string           `json:"rows_table,omitempty"`
	Rows       *types.ResultSet `json:"rows,omitempty"`
	Loading    bool             `json:"loading"`
	Error      string           `json:"error,omitempty"`
	Generation uint64           `json:"generation"`
}

type Viewer struct {
	src    Source
	limit  int
	logger *slog.Logger

	mu        sync.Mutex
	tables    []string
	selected  string
	rows      *types.ResultSet
	rowsTable string
	loading   bool
	err       string
	gen       uint64
}

// New returns a viewer reading through src. limit is clamped to 1..MaxRows.
func New(src Source, limit int, logger *slog.Logger) *Viewer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Viewer{src: src, limit: types.ClampLimit(limit), logger: logger}
}

// Discover loads the table list and, when it is not empty, selects and
// fetches the first table. A list failure leaves the list empty; a fetch
// failure keeps the list and returns a *FetchError.
func (v *Viewer) Discover(ctx context.Context) error {
	return v.discover(ctx, "")
}

// Open loads the table list and selects table straight away, so only its
// rows are fetched.
func (v *Viewer) Open(ctx context.Context, table string) error {
	return v.discover(ctx, table)
}

func (v *Viewer) discover(ctx context.Context, want string) error {
	tables, err := v.src.ListTables(ctx)

	v.mu.Lock()
	if err != nil {
		v.tables = nil
		v.selected = ""
		v.err = fmt.Sprintf("Failed to fetch tables: %v", err)
		v.mu.Unlock()
		v.logger.Error("table discovery failed", "error", err)
		return fmt.Errorf("failed to fetch tables: %w", err)
	}

	v.tables = tables
	v.err = ""
	if want == "" && len(tables) > 0 {
		want = tables[0]
	}
	if want == "" || !slices.Contains(tables, want) {
		v.selected = ""
		v.mu.Unlock()
		if want != "" {
			return fmt.Errorf("%w: %s", types.ErrUnknownTable, want)
		}
		return nil
	}
	v.selected = want
	gen := v.beginLocked()
	v.mu.Unlock()

	return v.fetch(ctx, want, gen)
}

// Select makes table the active selection and fetches its rows. Only names
// from the last successful discovery are accepted.
func (v *Viewer) Select(ctx context.Context, table string) error {
	v.mu.Lock()
	if !slices.Contains(v.tables, table) {
		v.mu.Unlock()
		return fmt.Errorf("%w: %s", types.ErrUnknownTable, table)
	}
	v.selected = table
	gen := v.beginLocked()
	v.mu.Unlock()

	return v.fetch(ctx, table, gen)
}

// Refresh re-fetches the current selection. It does nothing before a table
// has been selected.
func (v *Viewer) Refresh(ctx context.Context) error {
	v.mu.Lock()
	table := v.selected
	if table == "" {
		v.mu.Unlock()
		return nil
	}
	gen := v.beginLocked()
	v.mu.Unlock()

	return v.fetch(ctx, table, gen)
}

func (v *Viewer) beginLocked() uint64 {
	v.gen++
	v.loading = true
	return v.gen
}

func (v *Viewer) fetch(ctx context.Context, table string, gen uint64) error {
	rs, err := v.src.Select(ctx, table, types.SelectOptions{Limit: v.limit})

	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.gen {
		v.logger.Debug("discarding stale fetch", "table", table, "generation", gen, "current", v.gen)
		return nil
	}
	v.loading = false

	if err != nil {
		// rows of another table must not be shown under this selection
		if v.rowsTable != table {
			v.rows = nil
			v.rowsTable = ""
		}
		fetchErr := &FetchError{Table: table, Err: err}
		v.err = fetchErr.Error()
		v.logger.Error("row fetch failed", "table", table, "error", err)
		return fetchErr
	}

	if len(rs.Rows) > v.limit {
		rs.Rows = rs.Rows[:v.limit]
	}
	v.rows = rs
	v.rowsTable = table
	v.err = ""
	return nil
}

func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	return State{
		Tables:     append([]string(nil), v.tables...),
		Selected:   v.selected,
		RowsTable:  v.rowsTable,
		Rows:       v.rows,
		Loading:    v.loading,
		Error:      v.err,
		Generation: v.gen,
	}
}

// Grid renders the rows currently held for the selected table.
func (v *Viewer) Grid() render.Grid {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.rowsTable != v.selected {
		return render.Build(nil)
	}
	return render.Build(v.rows)
}
