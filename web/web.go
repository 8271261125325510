// Package web holds the dashboard's templ components and static assets.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

// StaticHandler serves the embedded assets under /static/.
func StaticHandler() http.Handler {
	fsys, _ := fs.Sub(staticFS, "static")
	return http.StripPrefix("/static/", http.FileServer(http.FS(fsys)))
}
