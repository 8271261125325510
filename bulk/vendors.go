package bulk

import (
	"context"
	"fmt"

	"github.com/melkeydev/logistics-admin/types"
)

type Vendor struct {
	ID   any    `json:"id"`
	Name string `json:"name"`
}

type Selector interface {
	Select(ctx context.Context, table string, opts types.SelectOptions) (*types.ResultSet, error)
}

// ActiveVendors lists the vendors a delivery can be assigned to.
func ActiveVendors(ctx context.Context, src Selector) ([]Vendor, error) {
	rs, err := src.Select(ctx, "vendors", types.SelectOptions{
		Columns: []string{"id", "name"},
		Filters: []types.Filter{{Column: "status", Op: types.OpEq, Value: "active"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vendors: %w", err)
	}

	vendors := make([]Vendor, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		name, _ := row["name"].(string)
		vendors = append(vendors, Vendor{ID: row["id"], Name: name})
	}
	return vendors, nil
}
