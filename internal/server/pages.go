package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"github.com/Eshhar121/ecommerce-frontend/internal/auth"
	"github.com/Eshhar121/ecommerce-frontend/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutTemplate = "templates/layout.html"

// pageData is what every page template receives.
type pageData struct {
	Title     string
	Identity  *auth.Identity
	CSRFField template.HTML
	Error     string
	Notice    string
	Data      any
}

type pages struct {
	templates map[string]*template.Template
	logger    *zap.Logger
}

var templateFuncs = template.FuncMap{
	"price": func(v float64) string {
		return "$" + strconv.FormatFloat(v, 'f', 2, 64)
	},
}

func loadPages(logger *zap.Logger) (*pages, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	p := &pages{templates: make(map[string]*template.Template), logger: logger}
	for _, name := range names {
		if name == layoutTemplate {
			continue
		}
		t, err := template.New(path.Base(layoutTemplate)).Funcs(templateFuncs).ParseFS(templateFS, layoutTemplate, name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		p.templates[path.Base(name)] = t
	}
	return p, nil
}

// data builds the common page fields for r.
func (p *pages) data(r *http.Request, title string) pageData {
	d := pageData{Title: title, CSRFField: csrf.TemplateField(r)}
	if v, ok := session.VisitorFromContext(r.Context()); ok {
		d.Identity = v.Session.Session().Identity
	}
	return d
}

func (p *pages) render(w http.ResponseWriter, status int, name string, data pageData) {
	t, ok := p.templates[name]
	if !ok {
		p.logger.Error("unknown template", zap.String("template", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		p.logger.Error("render template", zap.String("template", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// message renders a one-paragraph page, optionally linking onwards.
type message struct {
	Text     string
	Link     string
	LinkText string
}

func (p *pages) message(w http.ResponseWriter, r *http.Request, status int, title string, m message) {
	d := p.data(r, title)
	d.Data = m
	p.render(w, status, "message.html", d)
}

func (p *pages) notFound(w http.ResponseWriter, r *http.Request) {
	p.message(w, r, http.StatusNotFound, "Not Found", message{
		Text:     "404 - Not Found",
		Link:     "/",
		LinkText: "Back to the shop",
	})
}
