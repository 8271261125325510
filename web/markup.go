package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// markup writes HTML to w and keeps the first write error.
type markup struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newMarkup(ctx context.Context, w io.Writer) *markup {
	return &markup{ctx: ctx, w: w}
}

func (m *markup) raw(s string) {
	if m.err == nil {
		_, m.err = io.WriteString(m.w, s)
	}
}

// text writes s escaped, safe for element content and quoted attributes.
func (m *markup) text(s string) {
	m.raw(templ.EscapeString(s))
}

// url writes a sanitized, escaped URL attribute value.
func (m *markup) url(s string) {
	m.text(string(templ.URL(s)))
}

func (m *markup) attrIf(cond bool, attr string) {
	if cond {
		m.raw(" " + attr)
	}
}

func (m *markup) component(c templ.Component) {
	if m.err == nil {
		m.err = c.Render(m.ctx, m.w)
	}
}

func (m *markup) done() error {
	return m.err
}

// Label turns a status or column value like "in_progress" into "In progress".
func Label(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
