// Package view renders console pages as HTML.  Each screen template is
// parsed together with the shared layout, and the handler hands over a
// Frame that carries the navigation, the operator and the page.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-console/internal/console"
	"github.com/iliyamo/parking-console/internal/model"
)

//go:embed templates/*.html
var files embed.FS

// LoginTemplate is the sign-in page; screens use Screen.Template().
const LoginTemplate = "login"

type NavItem struct {
	Title  string
	Path   string
	Active bool
}

// Frame is the data every template executes against.
type Frame struct {
	Title    string
	Nav      []NavItem
	Operator string
	Notices  []console.Notice
	Data     any
}

// NewFrame wraps a console page for rendering.  The active screen comes
// from the page itself.
func NewFrame(p *console.Page, operator string) Frame {
	nav := make([]NavItem, 0, len(console.Screens()))
	for _, s := range console.Screens() {
		nav = append(nav, NavItem{Title: s.Title(), Path: s.Path(), Active: s == p.Screen})
	}
	return Frame{Title: p.Title, Nav: nav, Operator: operator, Notices: p.Notices, Data: p.Data}
}

// LoginData backs the sign-in form.
type LoginData struct {
	Operator string
	Error    string
}

type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"money": func(m model.Money) string { return m.String() },
	"when": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
	"same": func(a, b any) bool { return fmt.Sprint(a) == fmt.Sprint(b) },
}

// New parses every screen template and the login page against the layout.
func New() (*Renderer, error) {
	names := []string{LoginTemplate}
	for _, s := range console.Screens() {
		names = append(names, s.Template())
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		t, err := template.New(name).Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
