// Package screens holds the per-entity management screens: a filtered list
// of records with a status action, and the dashboard summary.
package screens

import (
	"errors"
	"fmt"
	"slices"

	"github.com/melkeydev/logistics-admin/types"
)

var (
	ErrUnknownKind   = errors.New("unknown screen")
	ErrInvalidStatus = errors.New("invalid status")
)

// Kind describes one entity table and its status enumeration.
type Kind struct {
	Name         string   `json:"name"`
	Title        string   `json:"title"`
	Path         string   `json:"path"`
	Table        string   `json:"table"`
	Statuses     []string `json:"statuses"`
	SearchColumn string   `json:"search_column"`
	// CompletedStatus stamps CompletedAtColumn with the backend clock.
	CompletedStatus   string `json:"completed_status,omitempty"`
	CompletedAtColumn string `json:"completed_at_column,omitempty"`
}

var Kinds = []Kind{
	{
		Name: "deliveries", Title: "Delivery Management", Path: "/deliveries", Table: "deliveries",
		Statuses:        []string{"pending", "in_transit", "completed", "cancelled"},
		SearchColumn:    "location",
		CompletedStatus: "completed", CompletedAtColumn: "completed_at",
	},
	{
		Name: "payments", Title: "Payment Management", Path: "/payments", Table: "payments",
		Statuses:     []string{"pending", "completed", "failed", "refunded"},
		SearchColumn: "transaction_id",
	},
	{
		Name: "stores", Title: "Store Management", Path: "/stores", Table: "stores",
		Statuses:     []string{"active", "maintenance", "inactive"},
		SearchColumn: "name",
	},
	{
		Name: "support", Title: "Support Management", Path: "/support", Table: "support_tickets",
		Statuses:     []string{"open", "in_progress", "resolved"},
		SearchColumn: "subject",
	},
	{
		Name: "users", Title: "User Management", Path: "/users", Table: "users",
		Statuses:     []string{"active", "inactive"},
		SearchColumn: "name",
	},
	{
		Name: "vendors", Title: "Vendor Management", Path: "/vendors", Table: "vendors",
		Statuses:     []string{"active", "inactive", "pending"},
		SearchColumn: "name",
	},
}

// Lookup finds a kind by name or by table name.
func Lookup(name string) (Kind, error) {
	for _, k := range Kinds {
		if k.Name == name || k.Table == name {
			return k, nil
		}
	}
	return Kind{}, fmt.Errorf("%w: %s", ErrUnknownKind, name)
}

func (k Kind) ValidStatus(status string) bool {
	return slices.Contains(k.Statuses, status)
}

// StatusValues returns the column values written for a status change.
func (k Kind) StatusValues(status string) (types.Row, error) {
	if !k.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %q is not one of %v for %s", ErrInvalidStatus, status, k.Statuses, k.Name)
	}
	values := types.Row{"status": status}
	if k.CompletedStatus != "" && status == k.CompletedStatus {
		values[k.CompletedAtColumn] = types.CurrentTimestamp
	}
	return values, nil
}
