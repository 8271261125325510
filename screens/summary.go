package screens

import (
	"context"
	"fmt"

	"github.com/melkeydev/logistics-admin/types"
)

type Summary struct {
	Kind     string         `json:"kind"`
	Title    string         `json:"title"`
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	Error    string         `json:"error,omitempty"`
}

// Summarize counts rows per status. Every status of the kind is present in
// ByStatus, unknown values are counted under their own name.
func Summarize(k Kind, rows []types.Row) Summary {
	s := Summary{Kind: k.Name, Title: k.Title, Total: len(rows), ByStatus: make(map[string]int, len(k.Statuses))}
	for _, st := range k.Statuses {
		s.ByStatus[st] = 0
	}
	for _, row := range rows {
		if v, ok := row["status"]; ok && v != nil {
			s.ByStatus[fmt.Sprint(v)]++
		}
	}
	return s
}

// Dashboard fetches up to limit rows of every kind and summarizes them. A
// kind that fails to load carries its error instead of failing the lot.
func Dashboard(ctx context.Context, store Store, limit int) []Summary {
	limit = types.ClampLimit(limit)
	out := make([]Summary, 0, len(Kinds))
	for _, k := range Kinds {
		rs, err := store.Select(ctx, k.Table, types.SelectOptions{Columns: []string{"id", "status"}, Limit: limit})
		if err != nil {
			s := Summarize(k, nil)
			s.Error = fmt.Sprintf("Failed to fetch %s", k.Name)
			out = append(out, s)
			continue
		}
		out = append(out, Summarize(k, rs.Rows))
	}
	return out
}
