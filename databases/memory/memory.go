// Package memory is an in-process backend with the same behaviour as the SQL
// connectors. It backs the "memory" database type and the demo data set.
package memory

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/melkeydev/logistics-admin/databases/base"
	"github.com/melkeydev/logistics-admin/types"
)

type table struct {
	columns []string
	rows    []types.Row
	nextID  int64
}

type MemoryConnector struct {
	mu       sync.RWMutex
	order    []string
	tables   map[string]*table
	excluded []string
	now      func() time.Time
}

func NewMemoryConnector(excluded []string) *MemoryConnector {
	return &MemoryConnector{
		tables:   make(map[string]*table),
		excluded: excluded,
		now:      time.Now,
	}
}

// CreateTable registers an empty table. Columns set the reported column order;
// "id" is always present and auto-assigned on insert.
func (c *MemoryConnector) CreateTable(name string, columns ...string) error {
	if err := base.ValidateIdentifier(name); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tables[name]; ok {
		return fmt.Errorf("table %s already exists", name)
	}
	cols := []string{"id"}
	for _, col := range columns {
		if col != "id" {
			cols = append(cols, col)
		}
	}
	c.tables[name] = &table{columns: cols, nextID: 1}
	c.order = append(c.order, name)
	return nil
}

func (c *MemoryConnector) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (c *MemoryConnector) Close() error {
	return nil
}

func (c *MemoryConnector) ListTables(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	return base.FilterTables(append([]string(nil), c.order...), c.excluded), nil
}

func (c *MemoryConnector) DescribeTable(ctx context.Context, name string) (*types.TableDescription, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	cols := make([]types.Column, len(t.columns))
	for i, col := range t.columns {
		cols[i] = types.Column{Name: col, Type: "any", Nullable: col != "id"}
	}
	return &types.TableDescription{
		Name:        name,
		Columns:     cols,
		RowCount:    int64(len(t.rows)),
		PrimaryKeys: []string{"id"},
	}, nil
}

func (c *MemoryConnector) Select(ctx context.Context, name string, opts types.SelectOptions) (*types.ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, err := c.lookup(name)
	if err != nil {
		return nil, err
	}

	matched := make([]types.Row, 0, len(t.rows))
	for _, row := range t.rows {
		ok, err := matches(row, opts.Filters)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, row)
		}
	}

	if opts.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			cmp := compare(matched[i][opts.OrderBy], matched[j][opts.OrderBy])
			if opts.Descending {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	columns := t.columns
	if len(opts.Columns) > 0 {
		columns = opts.Columns
	}

	result := &types.ResultSet{Columns: append([]string(nil), columns...), Rows: make([]types.Row, len(matched))}
	for i, row := range matched {
		out := make(types.Row, len(columns))
		for _, col := range columns {
			if v, ok := row[col]; ok {
				out[col] = v
			}
		}
		result.Rows[i] = out
	}
	return result, nil
}

// Insert stores all rows or none: every row is prepared before any is kept.
func (c *MemoryConnector) Insert(ctx context.Context, name string, rows []types.Row) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("no rows to insert")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.lookup(name)
	if err != nil {
		return 0, err
	}

	known := make(map[string]bool, len(t.columns))
	for _, col := range t.columns {
		known[col] = true
	}

	now := c.now().UTC()
	nextID := t.nextID
	prepared := make([]types.Row, len(rows))
	for i, row := range rows {
		out := make(types.Row, len(row)+1)
		for k, v := range row {
			if !known[k] {
				return 0, fmt.Errorf("failed to insert into %s: unknown column %q", name, k)
			}
			if types.IsCurrentTimestamp(v) {
				v = now
			}
			out[k] = v
		}
		if _, ok := out["id"]; !ok {
			out["id"] = nextID
			nextID++
		}
		prepared[i] = out
	}

	t.rows = append(t.rows, prepared...)
	t.nextID = nextID
	return int64(len(prepared)), nil
}

func (c *MemoryConnector) Update(ctx context.Context, name, idColumn string, id any, values types.Row) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("no values to update")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.lookup(name)
	if err != nil {
		return 0, err
	}

	now := c.now().UTC()
	var affected int64
	for _, row := range t.rows {
		if compare(row[idColumn], id) != 0 {
			continue
		}
		for k, v := range values {
			if types.IsCurrentTimestamp(v) {
				v = now
			}
			row[k] = v
		}
		affected++
	}
	return affected, nil
}

func (c *MemoryConnector) lookup(name string) (*table, error) {
	if err := base.ValidateIdentifier(name); err != nil {
		return nil, err
	}
	t, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownTable, name)
	}
	return t, nil
}

func matches(row types.Row, filters []types.Filter) (bool, error) {
	for _, f := range filters {
		v, present := row[f.Column]
		switch f.Op {
		case types.OpEq, "":
			if f.Value == nil {
				if present && v != nil {
					return false, nil
				}
				continue
			}
			if compare(v, f.Value) != 0 {
				return false, nil
			}
		case types.OpNeq:
			if f.Value == nil {
				if !present || v == nil {
					return false, nil
				}
				continue
			}
			if compare(v, f.Value) == 0 {
				return false, nil
			}
		case types.OpLike, types.OpNotLike:
			re, err := likePattern(fmt.Sprint(f.Value))
			if err != nil {
				return false, err
			}
			hit := present && v != nil && re.MatchString(fmt.Sprint(v))
			if hit != (f.Op == types.OpLike) {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported filter operator %q", f.Op)
		}
	}
	return true, nil
}

func likePattern(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("(?s)^")
	escaped := false
	for _, r := range pattern {
		if escaped {
			sb.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
			continue
		}
		switch r {
		case types.LikeEscape:
			escaped = true
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}

// compare orders numbers numerically and everything else by its text form,
// so an id given as "3" still finds the row stored with int64(3).
func compare(a, b any) int {
	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if aok && bok {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		var f float64
		if _, err := fmt.Sscanf(n, "%g", &f); err == nil && fmt.Sprint(f) == strings.TrimSpace(n) {
			return f, true
		}
	}
	return 0, false
}
