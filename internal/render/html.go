package render

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"

	appweb "painel/web"
)

// Renderer writes a View to w.
type Renderer interface {
	Render(w io.Writer, v View) error
}

// PageTemplate is the name of the full dashboard page template.
const PageTemplate = "dashboard_page"

// HTML renders views with the embedded page templates.
type HTML struct {
	tmpl *template.Template
}

var funcs = template.FuncMap{
	// Values passed through css are built from fixed palettes and numbers.
	"css": func(s string) template.CSS { return template.CSS(s) },
}

// NewHTML parses the embedded templates.
func NewHTML() (*HTML, error) {
	return NewHTMLFromFS(appweb.TemplatesFS, "templates/*.html")
}

// NewHTMLFromFS parses the templates matching pattern in fsys.
func NewHTMLFromFS(fsys fs.FS, pattern string) (*HTML, error) {
	t, err := template.New("").Funcs(funcs).ParseFS(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if t.Lookup(PageTemplate) == nil {
		return nil, fmt.Errorf("template %q not defined", PageTemplate)
	}
	return &HTML{tmpl: t}, nil
}

func (h *HTML) Render(w io.Writer, v View) error {
	return h.tmpl.ExecuteTemplate(w, PageTemplate, v)
}
