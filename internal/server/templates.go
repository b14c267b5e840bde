package server

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/session"
)

//go:embed templates/*.html templates/*.svg
var templateFS embed.FS

var pageFiles = []string{"add.html", "history.html", "progress.html"}

// templates holds the page templates, keyed by file name, and the chart.
type templates struct {
	pages map[string]*template.Template
	chart *template.Template
}

// loadTemplates parses the embedded templates. Each page gets its own clone
// of the layout so {{define "content"}} doesn't collide.
func loadTemplates() *templates {
	funcMap := template.FuncMap{
		"title":  func(p session.Page) string { return p.Title() },
		"date":   func(d models.Date) string { return d.String() },
		"px":     func(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) },
		"kg":     func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) },
		"isKind": func(e models.ExerciseEntry, k string) bool { return string(e.Kind) == k },
	}

	base := template.Must(template.New("base").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html"))

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, name := range pageFiles {
		clone := template.Must(base.Clone())
		template.Must(clone.ParseFS(templateFS, "templates/"+name))
		pages[name] = clone
	}

	chart := template.Must(template.New("chart.svg").Funcs(funcMap).ParseFS(templateFS, "templates/chart.svg"))

	return &templates{pages: pages, chart: chart}
}

// render executes a page through the layout.
func (t *templates) render(w io.Writer, name string, data any) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}
