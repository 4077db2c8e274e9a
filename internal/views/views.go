// Package views renders the embedded HTML templates and serves the static assets
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/studentportal/webapp/internal/flash"
	"github.com/studentportal/webapp/internal/forms"
	"github.com/studentportal/webapp/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names
const (
	PageIndex     = "index"
	PageAbout     = "about"
	PageProjects  = "projects"
	PageRectangle = "rectangle"
	PageWeather   = "weather"
	PageRegister  = "register"
	PageLogin     = "login"
	PageAdmin     = "admin"
	PageError     = "error"
)

var pageNames = []string{
	PageIndex, PageAbout, PageProjects, PageRectangle, PageWeather,
	PageRegister, PageLogin, PageAdmin, PageError,
}

// Page is the data every template receives
type Page struct {
	Title   string
	Session *models.Session
	Flashes []flash.Message
	Form    any
	Errors  forms.Errors
	Data    any
}

// RectangleData is the calculator result, nil until a valid submission
type RectangleData struct {
	Result *models.RectangleResult
}

// WeatherData holds a successful weather lookup
type WeatherData struct {
	Report *models.WeatherReport
}

// AdminData is the admin dashboard content
type AdminData struct {
	Users []models.User
}

// ErrorData describes an error page
type ErrorData struct {
	Status  int
	Message string
}

var funcs = template.FuncMap{
	"num": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"date": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
}

// Renderer executes page templates wrapped in the shared layout
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page template together with the layout
func New() (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages}, nil
}

// Render writes a page. Output is buffered so a template error never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name string, page *Page) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Static serves the embedded static assets; mount it with the /static/ prefix stripped
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServerFS(sub)
}
