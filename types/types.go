package types

import (
	"errors"
	"strings"
)

var (
	ErrUnknownTable      = errors.New("unknown table")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrNotFound          = errors.New("record not found")
	ErrUnauthorized      = errors.New("unauthorized")
)

// Row is one backend record keyed by column name. Its shape depends entirely
// on the table it was read from.
type Row map[string]any

// ResultSet keeps the column order reported by the backend next to the rows,
// since a Row on its own has no key order.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

type TableDescription struct {
	Name        string   `json:"name"`
	Columns     []Column `json:"columns"`
	RowCount    int64    `json:"row_count"`
	PrimaryKeys []string `json:"primary_keys,omitempty"`
}

// FilterOp names a comparison supported by Select.
type FilterOp string

const (
	OpEq      FilterOp = "eq"
	OpNeq     FilterOp = "neq"
	OpLike    FilterOp = "like"
	OpNotLike FilterOp = "not_like"
)

type Filter struct {
	Column string   `json:"column"`
	Op     FilterOp `json:"op"`
	Value  any      `json:"value"`
}

// MaxRows caps every list read by the dashboard.
const MaxRows = 100

// ClampLimit maps a configured row limit into 1..MaxRows. Zero or negative
// means MaxRows.
func ClampLimit(n int) int {
	if n <= 0 || n > MaxRows {
		return MaxRows
	}
	return n
}

// LikeEscape is the escape character of LIKE patterns built by Select.
const LikeEscape = '\\'

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike makes s match itself literally inside a LIKE pattern.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// SelectOptions narrows a generic table read. Zero Limit means no LIMIT clause.
type SelectOptions struct {
	Columns    []string `json:"columns,omitempty"`
	Filters    []Filter `json:"filters,omitempty"`
	OrderBy    string   `json:"order_by,omitempty"`
	Descending bool     `json:"descending,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// Timestamp values are stamped by the backend when written.
type serverTimestamp struct{}

// CurrentTimestamp asks the backend to store its own commit-time clock in a
// column instead of a client supplied value.
var CurrentTimestamp = serverTimestamp{}

// IsCurrentTimestamp reports whether v is the CurrentTimestamp sentinel.
func IsCurrentTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}
