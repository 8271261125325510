package base

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/melkeydev/logistics-admin/types"
)

// DefaultExcludedPrefixes hides engine and migration tool tables from discovery.
var DefaultExcludedPrefixes = []string{"pg_", "_prisma_", "sqlite_"}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Dialect captures the few places the supported engines disagree.
type Dialect struct {
	Name      string
	QuoteChar string
	// Numbered placeholders ($1, $2) instead of ?.
	Numbered bool
	// LikeEscape is the ESCAPE clause literal for types.LikeEscape.
	LikeEscape string
}

var (
	Postgres = Dialect{Name: "postgres", QuoteChar: `"`, Numbered: true, LikeEscape: `'\'`}
	// backslash is an escape inside MySQL string literals
	MySQL  = Dialect{Name: "mysql", QuoteChar: "`", LikeEscape: `'\\'`}
	SQLite = Dialect{Name: "sqlite", QuoteChar: `"`, LikeEscape: `'\'`}
)

func (d Dialect) Placeholder(n int) string {
	if d.Numbered {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Quote validates and quotes a table or column name.
func (d Dialect) Quote(name string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", err
	}
	return d.QuoteChar + name + d.QuoteChar, nil
}

func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", types.ErrInvalidIdentifier, name)
	}
	return nil
}

// IsSystemTable reports whether name starts with one of the excluded prefixes.
func IsSystemTable(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// FilterTables drops system tables while keeping the backend's order.
func FilterTables(names []string, prefixes []string) []string {
	tables := make([]string, 0, len(names))
	for _, n := range names {
		if IsSystemTable(n, prefixes) {
			continue
		}
		tables = append(tables, n)
	}
	return tables
}

type builder struct {
	d    Dialect
	args []any
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return b.d.Placeholder(len(b.args))
}

func (b *builder) value(v any) string {
	if types.IsCurrentTimestamp(v) {
		return "CURRENT_TIMESTAMP"
	}
	return b.bind(v)
}

// BuildSelect renders a SELECT for a single table. No ORDER BY is emitted
// unless opts.OrderBy is set.
func BuildSelect(d Dialect, table string, opts types.SelectOptions) (string, []any, error) {
	qt, err := d.Quote(table)
	if err != nil {
		return "", nil, err
	}

	cols := "*"
	if len(opts.Columns) > 0 {
		quoted := make([]string, len(opts.Columns))
		for i, c := range opts.Columns {
			if quoted[i], err = d.Quote(c); err != nil {
				return "", nil, err
			}
		}
		cols = strings.Join(quoted, ", ")
	}

	b := &builder{d: d}
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", cols, qt)

	if len(opts.Filters) > 0 {
		conds := make([]string, len(opts.Filters))
		for i, f := range opts.Filters {
			if conds[i], err = b.condition(f); err != nil {
				return "", nil, err
			}
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	if opts.OrderBy != "" {
		qc, err := d.Quote(opts.OrderBy)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(" ORDER BY " + qc)
		if opts.Descending {
			sb.WriteString(" DESC")
		}
	}

	if opts.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", opts.Limit)
	}

	return sb.String(), b.args, nil
}

func (b *builder) condition(f types.Filter) (string, error) {
	qc, err := b.d.Quote(f.Column)
	if err != nil {
		return "", err
	}
	switch f.Op {
	case types.OpEq, "":
		if f.Value == nil {
			return qc + " IS NULL", nil
		}
		return qc + " = " + b.bind(f.Value), nil
	case types.OpNeq:
		if f.Value == nil {
			return qc + " IS NOT NULL", nil
		}
		return qc + " <> " + b.bind(f.Value), nil
	case types.OpLike:
		return qc + " LIKE " + b.bind(f.Value) + " ESCAPE " + b.d.LikeEscape, nil
	case types.OpNotLike:
		return qc + " NOT LIKE " + b.bind(f.Value) + " ESCAPE " + b.d.LikeEscape, nil
	default:
		return "", fmt.Errorf("unsupported filter operator %q", f.Op)
	}
}

// BuildInsert renders one multi-row INSERT. Columns are the sorted union of
// all row keys; a row missing a column inserts NULL.
func BuildInsert(d Dialect, table string, rows []types.Row) (string, []any, error) {
	if len(rows) == 0 {
		return "", nil, fmt.Errorf("no rows to insert")
	}
	qt, err := d.Quote(table)
	if err != nil {
		return "", nil, err
	}

	columns := unionKeys(rows)
	quoted := make([]string, len(columns))
	for i, c := range columns {
		if quoted[i], err = d.Quote(c); err != nil {
			return "", nil, err
		}
	}

	b := &builder{d: d}
	tuples := make([]string, len(rows))
	for i, row := range rows {
		vals := make([]string, len(columns))
		for j, c := range columns {
			vals[j] = b.value(row[c])
		}
		tuples[i] = "(" + strings.Join(vals, ", ") + ")"
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		qt, strings.Join(quoted, ", "), strings.Join(tuples, ", "))
	return query, b.args, nil
}

// BuildUpdate renders an UPDATE restricted to a single identifier.
func BuildUpdate(d Dialect, table, idColumn string, id any, values types.Row) (string, []any, error) {
	if len(values) == 0 {
		return "", nil, fmt.Errorf("no values to update")
	}
	qt, err := d.Quote(table)
	if err != nil {
		return "", nil, err
	}
	qid, err := d.Quote(idColumn)
	if err != nil {
		return "", nil, err
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b := &builder{d: d}
	sets := make([]string, len(keys))
	for i, k := range keys {
		qc, err := d.Quote(k)
		if err != nil {
			return "", nil, err
		}
		sets[i] = qc + " = " + b.value(values[k])
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		qt, strings.Join(sets, ", "), qid, b.bind(id))
	return query, b.args, nil
}

func unionKeys(rows []types.Row) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
