// Package events announces successful mutations to whoever is listening:
// a Kafka topic, websocket clients, or nobody.
package events

import (
	"context"
	"errors"
	"time"
)

type Type string

const (
	StatusUpdated Type = "status_updated"
	RowsInserted  Type = "rows_inserted"
)

type Event struct {
	Type   Type      `json:"type"`
	Table  string    `json:"table"`
	ID     string    `json:"id,omitempty"`
	Status string    `json:"status,omitempty"`
	Count  int64     `json:"count,omitempty"`
	UserID string    `json:"user_id,omitempty"`
	At     time.Time `json:"at"`
}

// Key groups events of one record together on partitioned transports.
func (e Event) Key() string {
	if e.ID != "" {
		return e.Table + ":" + e.ID
	}
	return e.Table
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stamp fills At when the caller left it empty.
func Stamp(e Event) Event {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	return e
}
