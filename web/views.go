package web

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net/url"
	"slices"
	"strconv"

	"github.com/a-h/templ"
	"github.com/melkeydev/logistics-admin/bulk"
	"github.com/melkeydev/logistics-admin/render"
	"github.com/melkeydev/logistics-admin/screens"
	"github.com/melkeydev/logistics-admin/viewer"
)

type ScreenData struct {
	State screens.State
	Grid  render.Grid
	// IDs holds the record id of each grid row, in order.
	IDs []string
}

type BulkData struct {
	State   bulk.State
	Vendors []bulk.Vendor
}

type TablesData struct {
	State viewer.State
	Grid  render.Grid
}

func DashboardPage(p Page, summaries []screens.Summary) templ.Component {
	return Layout(p, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		m.raw(`<h1>Dashboard</h1><div class="cards">`)
		for _, sum := range summaries {
			m.raw(`<div class="card"><h2>`)
			m.text(sum.Title)
			m.raw(`</h2>`)
			if sum.Error != "" {
				m.raw(`<p class="error">`)
				m.text(sum.Error)
				m.raw(`</p></div>`)
				continue
			}
			m.raw(`<p class="total">`)
			m.text(strconv.Itoa(sum.Total))
			m.raw(`</p><ul>`)
			for _, status := range slices.Sorted(maps.Keys(sum.ByStatus)) {
				m.raw(`<li><span class="badge `)
				m.text(status)
				m.raw(`">`)
				m.text(Label(status))
				m.raw(`</span> `)
				m.text(strconv.Itoa(sum.ByStatus[status]))
				m.raw(`</li>`)
			}
			m.raw(`</ul></div>`)
		}
		m.raw(`</div>`)
		return m.done()
	}))
}

// gridTable writes headers and cells; extra adds one trailing cell per row.
func gridTable(m *markup, g render.Grid, extraHeader string, extra func(i int)) {
	if g.Message != "" {
		m.raw(`<p class="empty">`)
		m.text(g.Message)
		m.raw(`</p>`)
		return
	}
	m.raw(`<table class="data-table"><thead><tr>`)
	for _, h := range g.Headers {
		m.raw(`<th>`)
		m.text(h)
		m.raw(`</th>`)
	}
	if extra != nil {
		m.raw(`<th>`)
		m.text(extraHeader)
		m.raw(`</th>`)
	}
	m.raw(`</tr></thead><tbody>`)
	for i, cells := range g.Rows {
		m.raw(`<tr>`)
		for _, cell := range cells {
			m.raw(`<td>`)
			m.text(cell)
			m.raw(`</td>`)
		}
		if extra != nil {
			m.raw(`<td>`)
			extra(i)
			m.raw(`</td>`)
		}
		m.raw(`</tr>`)
	}
	m.raw(`</tbody></table>`)
}

func statusOptions(m *markup, statuses []string, selected string) {
	for _, status := range statuses {
		m.raw(`<option value="`)
		m.text(status)
		m.raw(`"`)
		m.attrIf(status == selected, "selected")
		m.raw(`>`)
		m.text(Label(status))
		m.raw(`</option>`)
	}
}

// ScreenPage lists the records of one kind with a status form per row.
func ScreenPage(p Page, d ScreenData) templ.Component {
	return Layout(p, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		k := d.State.Kind
		m.raw(`<h1>`)
		m.text(k.Title)
		m.raw(`</h1><form method="get" class="filters"><input type="search" name="q" value="`)
		m.text(d.State.Filter.Search)
		m.raw(`" placeholder="Search `)
		m.text(k.Name)
		m.raw(`..."><select name="status"><option value="">All statuses</option>`)
		statusOptions(m, k.Statuses, d.State.Filter.Status)
		m.raw(`</select><button type="submit">Filter</button></form>`)

		gridTable(m, d.Grid, "Update status", func(i int) {
			m.raw(`<form method="post" action="`)
			m.url("/api/screens/" + url.PathEscape(k.Name) + "/" + url.PathEscape(d.IDs[i]) + "/status")
			m.raw(`"><select name="status">`)
			statusOptions(m, k.Statuses, "")
			m.raw(`</select><button type="submit">Save</button></form>`)
		})
		return m.done()
	}))
}

// BulkPage is the multi-draft delivery form. Every button posts the whole
// form so typed values survive adding and removing drafts.
func BulkPage(p Page, d BulkData) templ.Component {
	return Layout(p, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		m.raw(`<h1>Bulk Delivery Creation</h1><form method="post" action="/api/bulk/submit" class="bulk">`)
		for i, draft := range d.State.Drafts {
			n := strconv.Itoa(i)
			m.raw(`<fieldset><legend>Delivery #`)
			m.text(strconv.Itoa(i + 1))
			m.raw(`</legend>`)
			if i > 0 {
				m.raw(`<button type="submit" formaction="/api/bulk/drafts/` + n + `?_method=DELETE" formnovalidate>Remove</button>`)
			}
			m.raw(`<label>Vendor <select name="vendor_id_` + n + `"><option value="0">Select a vendor</option>`)
			for _, v := range d.Vendors {
				id := fmt.Sprint(v.ID)
				m.raw(`<option value="`)
				m.text(id)
				m.raw(`"`)
				m.attrIf(id == strconv.FormatInt(draft.VendorID, 10), "selected")
				m.raw(`>`)
				m.text(v.Name)
				m.raw(`</option>`)
			}
			m.raw(`</select></label><label>Location <input type="text" name="location_` + n + `" value="`)
			m.text(draft.Location)
			m.raw(`"></label><label>Description <textarea name="description_` + n + `">`)
			m.text(draft.Description)
			m.raw(`</textarea></label></fieldset>`)
		}
		m.raw(`<button type="submit" formaction="/api/bulk/drafts" formnovalidate>Add Another Delivery</button>`)
		m.raw(`<button type="submit"`)
		m.attrIf(d.State.Submitting, "disabled")
		m.raw(`>Create Deliveries</button></form>`)
		return m.done()
	}))
}

// TablesPage is the database viewer: the table list and the selected
// table's rows.
func TablesPage(p Page, d TablesData) templ.Component {
	return Layout(p, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		m.raw(`<h1>Database Viewer</h1><div class="viewer"><nav class="table-list">`)
		if len(d.State.Tables) == 0 {
			m.raw(`<p>No tables found</p>`)
		}
		for _, table := range d.State.Tables {
			m.raw(`<form method="post" action="/api/viewer/select"><input type="hidden" name="table" value="`)
			m.text(table)
			m.raw(`"><button type="submit"`)
			m.attrIf(table == d.State.Selected, `class="active"`)
			m.raw(`>`)
			m.text(table)
			m.raw(`</button></form>`)
		}
		m.raw(`</nav><section>`)
		if d.State.Selected != "" {
			m.raw(`<header><h2>`)
			m.text(d.State.Selected)
			m.raw(`</h2><form method="post" action="/api/viewer/refresh"><button type="submit">Refresh</button></form></header>`)
			if d.State.Loading {
				m.raw(`<p class="loading">Loading...</p>`)
			}
			gridTable(m, d.Grid, "", nil)
		}
		m.raw(`</section></div>`)
		return m.done()
	}))
}
