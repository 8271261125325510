package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/melkeydev/logistics-admin/auth"
)

type NavItem struct {
	Href string
	Name string
}

// Page is the chrome shared by every screen.
type Page struct {
	Title   string
	Active  string
	Session *auth.Session
	Nav     []NavItem
	Error   string
	Message string
}

// Layout wraps content in the document, the sidebar for signed-in users
// and the alert banners.
func Layout(p Page, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		m.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		m.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		m.text(p.Title)
		m.raw(` | Logistics Admin</title><link rel="stylesheet" href="/static/app.css"></head><body>`)

		if p.Session != nil {
			m.raw(`<aside class="sidebar"><div class="brand">Logistics Admin</div><nav>`)
			for _, item := range p.Nav {
				m.raw(`<a href="`)
				m.url(item.Href)
				m.raw(`"`)
				m.attrIf(item.Href == p.Active, `class="active"`)
				m.raw(`>`)
				m.text(item.Name)
				m.raw(`</a>`)
			}
			m.raw(`</nav><form method="post" action="/api/logout" class="signout"><span>`)
			m.text(p.Session.Email)
			m.raw(`</span><button type="submit">Sign out</button></form></aside>`)
			m.raw(`<main class="with-sidebar">`)
		} else {
			m.raw(`<main>`)
		}

		if p.Error != "" {
			m.raw(`<div class="alert error">Error: `)
			m.text(p.Error)
			m.raw(`</div>`)
		}
		if p.Message != "" {
			m.raw(`<div class="alert success">`)
			m.text(p.Message)
			m.raw(`</div>`)
		}
		m.component(content)
		m.raw(`</main></body></html>`)
		return m.done()
	})
}

func LoginPage(p Page) templ.Component {
	return Layout(p, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		m.raw(`<section class="login"><h1>Sign in</h1><form method="post" action="/login">`)
		m.raw(`<label>Email <input type="email" name="email" required autofocus></label>`)
		m.raw(`<label>Password <input type="password" name="password" required></label>`)
		m.raw(`<button type="submit">Sign in</button></form></section>`)
		return m.done()
	}))
}

func ErrorPage(p Page) templ.Component {
	return Layout(p, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		m.raw(`<section class="error-page"><h1>`)
		m.text(p.Title)
		m.raw(`</h1><p><a href="/">Back to dashboard</a></p></section>`)
		return m.done()
	}))
}
