// Package bulk is the multi-delivery creation form: an editable list of
// drafts submitted as one batched insert.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/melkeydev/logistics-admin/events"
	"github.com/melkeydev/logistics-admin/types"
)

const (
	Table          = "deliveries"
	InitialStatus  = "pending"
	SuccessMessage = "Bulk deliveries created successfully!"
	FailureMessage = "Error creating bulk deliveries. Please try again."
)

var (
	ErrInvalidDraft = errors.New("invalid draft")
	ErrSubmitting   = errors.New("submission already in progress")
)

type Draft struct {
	Location    string `json:"location" form:"location"`
	Description string `json:"description" form:"description"`
	VendorID    int64  `json:"vendor_id" form:"vendor_id"`
}

// Validate reports the first missing required field.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Location) == "" {
		return fmt.Errorf("%w: location is required", ErrInvalidDraft)
	}
	if d.VendorID == 0 {
		return fmt.Errorf("%w: a vendor must be selected", ErrInvalidDraft)
	}
	return nil
}

type Inserter interface {
	Insert(ctx context.Context, table string, rows []types.Row) (int64, error)
}

type State struct {
	Drafts     []Draft `json:"drafts"`
	Message    string  `json:"message,omitempty"`
	Error      string  `json:"error,omitempty"`
	Submitting bool    `json:"submitting"`
}

type Form struct {
	store     Inserter
	publisher events.Publisher
	logger    *slog.Logger

	mu         sync.Mutex
	drafts     []Draft
	message    string
	err        string
	submitting bool
}

// NewForm returns a form holding a single blank draft.
func NewForm(store Inserter, publisher events.Publisher, logger *slog.Logger) *Form {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Form{store: store, publisher: publisher, logger: logger, drafts: []Draft{{}}}
}

func (f *Form) Append() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drafts = append(f.drafts, Draft{})
}

// Remove drops the draft at index. The first draft cannot be removed, so
// index 0 is a no-op.
func (f *Form) Remove(index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if index == 0 {
		return nil
	}
	if index < 0 || index >= len(f.drafts) {
		return fmt.Errorf("%w: no draft at index %d", ErrInvalidDraft, index)
	}
	f.drafts = append(f.drafts[:index:index], f.drafts[index+1:]...)
	return nil
}

// Update sets one field of the draft at index. vendor_id must be an integer.
func (f *Form) Update(index int, field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if index < 0 || index >= len(f.drafts) {
		return fmt.Errorf("%w: no draft at index %d", ErrInvalidDraft, index)
	}
	d := f.drafts[index]
	switch field {
	case "location":
		d.Location = value
	case "description":
		d.Description = value
	case "vendor_id":
		id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: vendor_id %q is not a number", ErrInvalidDraft, value)
		}
		d.VendorID = id
	default:
		return fmt.Errorf("%w: unknown field %q", ErrInvalidDraft, field)
	}
	f.drafts[index] = d
	return nil
}

// Submit inserts every draft as a pending delivery owned by userID in one
// statement. On success the form resets to one blank draft; on failure the
// drafts are kept.
func (f *Form) Submit(ctx context.Context, userID string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, fmt.Errorf("%w: no authenticated user", types.ErrUnauthorized)
	}

	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return 0, ErrSubmitting
	}
	drafts := append([]Draft(nil), f.drafts...)
	for i, d := range drafts {
		if err := d.Validate(); err != nil {
			f.err = fmt.Sprintf("Delivery #%d: %s", i+1, strings.TrimPrefix(err.Error(), ErrInvalidDraft.Error()+": "))
			f.message = ""
			f.mu.Unlock()
			return 0, fmt.Errorf("delivery #%d: %w", i+1, err)
		}
	}
	f.submitting = true
	f.message = ""
	f.err = ""
	f.mu.Unlock()

	rows := make([]types.Row, len(drafts))
	for i, d := range drafts {
		rows[i] = types.Row{
			"location":    d.Location,
			"description": d.Description,
			"vendor_id":   d.VendorID,
			"user_id":     userID,
			"status":      InitialStatus,
		}
	}

	n, err := f.store.Insert(ctx, Table, rows)

	f.mu.Lock()
	f.submitting = false
	if err != nil {
		f.err = FailureMessage
		f.mu.Unlock()
		f.logger.Error("bulk delivery insert failed", "count", len(rows), "user", userID, "error", err)
		return 0, fmt.Errorf("failed to create deliveries: %w", err)
	}
	f.drafts = []Draft{{}}
	f.message = SuccessMessage
	f.mu.Unlock()

	f.logger.Info("bulk deliveries created", "count", n, "user", userID)
	if err := f.publisher.Publish(ctx, events.Event{
		Type:   events.RowsInserted,
		Table:  Table,
		Count:  n,
		UserID: userID,
	}); err != nil {
		f.logger.Warn("failed to publish insert", "error", err)
	}
	return n, nil
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{
		Drafts:     append([]Draft(nil), f.drafts...),
		Message:    f.message,
		Error:      f.err,
		Submitting: f.submitting,
	}
}
