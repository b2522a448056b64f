// Package templates holds the embedded HTML pages of the site. Every page
// defines a template named after its file and wraps itself in the shared
// "header" and "footer" blocks of layout.html.
package templates

import (
	"embed"
	"html/template"
	"time"
)

//go:embed html/*.html
var files embed.FS

var funcs = template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
}

// Load parses every embedded page into one template set.
func Load() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "html/*.html")
}

func MustLoad() *template.Template {
	return template.Must(Load())
}
