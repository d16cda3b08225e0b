package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/svit-college/curriculum-portal/internal/shared"
	"github.com/svit-college/curriculum-portal/web"
)

const (
	pagesDir     = "templates/pages"
	layoutEntry  = "layout"
	layoutsGlob  = "templates/layouts/*.html"
	partialsGlob = "templates/partials/*.html"
)

// Engine renders HTML templates. Each page is parsed into its own set on top
// of the shared layouts and partials so pages may redefine the same blocks.
type Engine struct {
	pages map[string]*template.Template
}

// User is the navigation view of the signed-in principal.
type User struct {
	ID        int64
	Name      string
	Email     string
	Role      string
	Dashboard string
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	User        *User
	Data        any
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	return newEngine(web.Templates)
}

func newEngine(fsys fs.FS) (*Engine, error) {
	base, err := template.New("root").Funcs(FuncMap()).ParseFS(fsys, layoutsGlob, partialsGlob)
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template)
	err = fs.WalkDir(fsys, pagesDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".html" {
			return nil
		}
		tpl, err := base.Clone()
		if err != nil {
			return err
		}
		if _, err := tpl.ParseFS(fsys, p); err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(p, pagesDir+"/"), ".html")
		pages[name] = tpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Engine{pages: pages}, nil
}

// Has reports whether a page with the given name was parsed.
func (e *Engine) Has(name string) bool {
	if e == nil {
		return false
	}
	_, ok := e.pages[name]
	return ok
}

// Render executes the layout for the named page with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.Execute(w, name, layoutEntry, data)
}

// Execute runs a named template from a page set into w. Output is buffered so
// a failing template never leaves a half-written document.
func (e *Engine) Execute(w io.Writer, page, entry string, data any) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	tpl, ok := e.pages[page]
	if !ok {
		return fmt.Errorf("view: unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, entry, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// FuncMap returns the helpers available to every template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006")
		},
		"formatDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"isoDate": shared.FormatDate,
		"title":   titleCase,
		"join":    strings.Join,
		"lower":   strings.ToLower,
		"add":     func(a, b int) int { return a + b },
		"sub":     func(a, b int) int { return a - b },
		"contains": func(list []string, v string) bool {
			for _, item := range list {
				if item == v {
					return true
				}
			}
			return false
		},
	}
}

// titleCase builds a Caser per call; casers are not safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
