package viewer

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"testing"

	"github.com/melkeydev/logistics-admin/render"
	"github.com/melkeydev/logistics-admin/testutil"
	"github.com/melkeydev/logistics-admin/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu        sync.Mutex
	tables    []string
	listErr   error
	selectErr map[string]error
	rows      map[string]int
	gates     map[string]chan struct{}
	entered   chan string
	calls     []types.SelectOptions
}

func (f *fakeSource) ListTables(ctx context.Context) ([]string, error) {
	return f.tables, f.listErr
}

func (f *fakeSource) Select(ctx context.Context, table string, opts types.SelectOptions) (*types.ResultSet, error) {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	gate := f.gates[table]
	err := f.selectErr[table]
	n := f.rows[table]
	f.mu.Unlock()

	if gate != nil {
		f.entered <- table
		<-gate
	}
	if err != nil {
		return nil, err
	}
	rs := &types.ResultSet{Columns: []string{"id", "table"}}
	for i := 0; i < n; i++ {
		rs.Rows = append(rs.Rows, types.Row{"id": i + 1, "table": table})
	}
	return rs, nil
}

func TestViewer_DiscoverSelectsFirstTable(t *testing.T) {
	src := &fakeSource{tables: []string{"deliveries", "vendors"}, rows: map[string]int{"deliveries": 3}}
	v := New(src, 0, testutil.NewTestLogger(t))

	require.NoError(t, v.Discover(context.Background()))

	st := v.State()
	assert.Equal(t, []string{"deliveries", "vendors"}, st.Tables)
	assert.Equal(t, "deliveries", st.Selected)
	assert.Equal(t, "deliveries", st.RowsTable)
	assert.Len(t, st.Rows.Rows, 3)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)

	require.Len(t, src.calls, 1)
	assert.Equal(t, types.SelectOptions{Limit: MaxRows}, src.calls[0])
}

type staticSource struct {
	tables []string
	rows   map[string]*types.ResultSet
}

func (s staticSource) ListTables(ctx context.Context) ([]string, error) {
	return s.tables, nil
}

func (s staticSource) Select(ctx context.Context, table string, opts types.SelectOptions) (*types.ResultSet, error) {
	return s.rows[table], nil
}

func TestViewer_DiscoverRendersVendors(t *testing.T) {
	vendors := &types.ResultSet{
		Columns: []string{"id", "name", "status"},
		Rows: []types.Row{
			{"id": int64(1), "name": "FastFood Co.", "status": "active"},
			{"id": int64(2), "name": "Book Haven", "status": "inactive"},
		},
	}
	src := staticSource{
		tables: []string{"vendors", "deliveries"},
		rows:   map[string]*types.ResultSet{"vendors": vendors},
	}
	v := New(src, 0, testutil.NewTestLogger(t))

	require.NoError(t, v.Discover(context.Background()))
	assert.Equal(t, "vendors", v.State().Selected)

	grid := v.Grid()
	assert.Empty(t, grid.Message)
	require.Len(t, grid.Rows, 2)
	assert.ElementsMatch(t, slices.Collect(maps.Keys(vendors.Rows[0])), grid.Headers)
	assert.Equal(t, []string{"1", "FastFood Co.", "active"}, grid.Rows[0])
	assert.Equal(t, []string{"2", "Book Haven", "inactive"}, grid.Rows[1])
}

func TestViewer_DiscoverKeepsListWhenFetchFails(t *testing.T) {
	src := &fakeSource{
		tables:    []string{"vendors", "deliveries"},
		selectErr: map[string]error{"vendors": assert.AnError},
		rows:      map[string]int{"deliveries": 2},
	}
	v := New(src, 0, testutil.NewTestLogger(t))

	err := v.Discover(context.Background())
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "vendors", fetchErr.Table)
	assert.ErrorIs(t, err, assert.AnError)

	st := v.State()
	assert.Equal(t, []string{"vendors", "deliveries"}, st.Tables)
	assert.Equal(t, "vendors", st.Selected)
	assert.Contains(t, st.Error, "failed to fetch vendors data")

	require.NoError(t, v.Select(context.Background(), "deliveries"))
	st = v.State()
	assert.Equal(t, "deliveries", st.RowsTable)
	assert.Len(t, st.Rows.Rows, 2)
	assert.Empty(t, st.Error)
}

func TestViewer_DiscoverEmpty(t *testing.T) {
	v := New(&fakeSource{}, 0, testutil.NewTestLogger(t))

	require.NoError(t, v.Discover(context.Background()))
	st := v.State()
	assert.Empty(t, st.Tables)
	assert.Empty(t, st.Selected)
	assert.Equal(t, render.Placeholder, v.Grid().Message)
}

func TestViewer_DiscoverFailure(t *testing.T) {
	v := New(&fakeSource{listErr: assert.AnError}, 0, testutil.NewTestLogger(t))

	err := v.Discover(context.Background())
	assert.ErrorIs(t, err, assert.AnError)

	st := v.State()
	assert.Empty(t, st.Tables)
	assert.Empty(t, st.Selected)
	assert.Contains(t, st.Error, "Failed to fetch tables")
}

func TestViewer_SelectUnknownTable(t *testing.T) {
	src := &fakeSource{tables: []string{"vendors"}}
	v := New(src, 0, testutil.NewTestLogger(t))
	require.NoError(t, v.Discover(context.Background()))

	err := v.Select(context.Background(), "pg_authid")
	assert.ErrorIs(t, err, types.ErrUnknownTable)
	assert.Equal(t, "vendors", v.State().Selected)
	assert.Len(t, src.calls, 1)
}

func TestViewer_RowCapIsEnforced(t *testing.T) {
	src := &fakeSource{tables: []string{"payments"}, rows: map[string]int{"payments": 250}}
	v := New(src, 500, testutil.NewTestLogger(t))

	require.NoError(t, v.Discover(context.Background()))
	assert.Len(t, v.State().Rows.Rows, MaxRows)
	assert.Len(t, v.Grid().Rows, MaxRows)
}

func TestViewer_FetchFailure(t *testing.T) {
	src := &fakeSource{
		tables:    []string{"deliveries", "vendors"},
		rows:      map[string]int{"deliveries": 2},
		selectErr: map[string]error{},
	}
	v := New(src, 0, testutil.NewTestLogger(t))
	require.NoError(t, v.Discover(context.Background()))

	t.Run("same table keeps its rows", func(t *testing.T) {
		src.selectErr["deliveries"] = assert.AnError
		err := v.Refresh(context.Background())
		assert.ErrorIs(t, err, assert.AnError)

		st := v.State()
		assert.Contains(t, st.Error, "failed to fetch deliveries data")
		assert.Equal(t, "deliveries", st.RowsTable)
		assert.Len(t, st.Rows.Rows, 2)
	})

	t.Run("other table clears rows", func(t *testing.T) {
		src.selectErr["vendors"] = assert.AnError
		err := v.Select(context.Background(), "vendors")
		assert.ErrorIs(t, err, assert.AnError)

		st := v.State()
		assert.Equal(t, "vendors", st.Selected)
		assert.Empty(t, st.RowsTable)
		assert.Nil(t, st.Rows)
		assert.Contains(t, st.Error, "failed to fetch vendors data")
	})
}

func TestViewer_StaleResponseIsDiscarded(t *testing.T) {
	src := &fakeSource{
		tables:  []string{"deliveries", "vendors"},
		rows:    map[string]int{"deliveries": 4, "vendors": 2},
		gates:   map[string]chan struct{}{},
		entered: make(chan string, 1),
	}
	v := New(src, 0, testutil.NewTestLogger(t))
	require.NoError(t, v.Discover(context.Background()))

	gate := make(chan struct{})
	src.mu.Lock()
	src.gates["deliveries"] = gate
	src.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- v.Refresh(context.Background()) }()
	assert.Equal(t, "deliveries", <-src.entered)
	assert.True(t, v.State().Loading)

	require.NoError(t, v.Select(context.Background(), "vendors"))
	close(gate)
	require.NoError(t, <-done)

	st := v.State()
	assert.Equal(t, "vendors", st.Selected)
	assert.Equal(t, "vendors", st.RowsTable)
	assert.Len(t, st.Rows.Rows, 2)
	assert.False(t, st.Loading)
	for _, row := range v.Grid().Rows {
		assert.Equal(t, "vendors", row[1], fmt.Sprint(row))
	}
}

func TestViewer_Open(t *testing.T) {
	src := &fakeSource{tables: []string{"deliveries", "vendors"}, rows: map[string]int{"vendors": 2}}
	v := New(src, 0, testutil.NewTestLogger(t))

	require.NoError(t, v.Open(context.Background(), "vendors"))
	st := v.State()
	assert.Equal(t, "vendors", st.Selected)
	assert.Len(t, st.Rows.Rows, 2)
	// the first table is never fetched
	assert.Len(t, src.calls, 1)

	err := New(src, 0, testutil.NewTestLogger(t)).Open(context.Background(), "_prisma_migrations")
	assert.ErrorIs(t, err, types.ErrUnknownTable)
}
