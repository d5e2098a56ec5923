// Package web holds the embedded page templates and static assets of the
// browser front-end.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static/*
var staticFiles embed.FS

// StaticFS returns the embedded static assets with the static folder as root.
func StaticFS() (fs.FS, error) {
	return fs.Sub(staticFiles, "static")
}

// Renderer executes the page templates.
type Renderer struct {
	tpl *template.Template
}

// NewRenderer parses every embedded template.
func NewRenderer() (*Renderer, error) {
	tpl, err := template.New("").Funcs(template.FuncMap{
		"pct": func(part, total int) int {
			if total <= 0 {
				return 0
			}
			return int(float64(part) / float64(total) * 100.0)
		},
	}).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tpl: tpl}, nil
}

// Render writes the full page for p.
func (r *Renderer) Render(w io.Writer, p *Page) error {
	if err := r.tpl.ExecuteTemplate(w, "layout", p); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
