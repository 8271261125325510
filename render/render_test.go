package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/melkeydev/logistics-admin/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		present bool
		want    string
	}{
		{name: "missing", present: false, want: ""},
		{name: "null", value: nil, present: true, want: "null"},
		{name: "string", value: "in_transit", present: true, want: "in_transit"},
		{name: "bytes", value: []byte("raw"), present: true, want: "raw"},
		{name: "int", value: int64(42), present: true, want: "42"},
		{name: "float", value: 45.99, present: true, want: "45.99"},
		{name: "bool", value: true, present: true, want: "true"},
		{name: "time", value: time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC), present: true, want: "2024-01-15T14:30:00Z"},
		{name: "map", value: map[string]any{"fee": 184, "for": "delivery"}, present: true, want: `{"fee":184,"for":"delivery"}`},
		{name: "slice", value: []any{"urgent", 2}, present: true, want: `["urgent",2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCell(tt.value, tt.present))
		})
	}
}

func TestHeaders_UnionOfKeys(t *testing.T) {
	rs := &types.ResultSet{
		Columns: []string{"id", "status"},
		Rows: []types.Row{
			{"id": 1, "status": "open"},
			{"id": 2, "status": "open", "tags": []any{"urgent"}, "assignee": "ops"},
			{"id": 3, "priority": "high"},
		},
	}

	assert.Equal(t, []string{"id", "status", "assignee", "tags", "priority"}, Headers(rs))
}

func TestBuild(t *testing.T) {
	rs := &types.ResultSet{
		Columns: []string{"id", "status"},
		Rows: []types.Row{
			{"id": 1, "status": nil},
			{"id": 2, "status": "open", "note": "late"},
		},
	}

	grid := Build(rs)
	assert.Equal(t, []string{"id", "status", "note"}, grid.Headers)
	assert.Equal(t, [][]string{
		{"1", "null", ""},
		{"2", "open", "late"},
	}, grid.Rows)
	for _, row := range grid.Rows {
		assert.Len(t, row, len(grid.Headers))
	}
	assert.Empty(t, grid.Message)
}

func TestBuild_Empty(t *testing.T) {
	for _, rs := range []*types.ResultSet{nil, {Columns: []string{"id"}}} {
		grid := Build(rs)
		assert.True(t, grid.Empty())
		assert.Equal(t, Placeholder, grid.Message)
	}
}

func TestWrite(t *testing.T) {
	rs := &types.ResultSet{
		Columns: []string{"id", "name"},
		Rows: []types.Row{
			{"id": 1, "name": "FastFood Co."},
			{"id": 2, "name": "<b>Book Haven</b>"},
		},
	}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, rs, FormatJSON))
		var grid Grid
		require.NoError(t, json.Unmarshal(buf.Bytes(), &grid))
		assert.Equal(t, []string{"id", "name"}, grid.Headers)
		assert.Len(t, grid.Rows, 2)
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, rs, FormatText))
		assert.Contains(t, buf.String(), "FastFood Co.")
		assert.True(t, strings.HasSuffix(buf.String(), "(2 rows)\n"))
	})

	t.Run("html escapes cells", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, rs, FormatHTML))
		out := buf.String()
		assert.Contains(t, out, `class="data-table"`)
		assert.Contains(t, out, "&lt;b&gt;Book Haven&lt;/b&gt;")
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, rs, FormatCSV))
		assert.Contains(t, buf.String(), "1,FastFood Co.")
	})

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, rs, FormatMarkdown))
		assert.True(t, strings.HasPrefix(buf.String(), "|"))
		assert.Contains(t, buf.String(), "FastFood Co. |")
	})

	t.Run("placeholder", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, &types.ResultSet{}, FormatText))
		assert.Equal(t, Placeholder+"\n", buf.String())
	})
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("MD")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
