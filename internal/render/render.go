// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides html/template rendering for the admin panel and
// the public storefront. Admin pages are written straight to the response;
// public pages are rendered to bytes so the caller can cache them.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"storefront/internal/i18n"
	"storefront/internal/markdown"
	"storefront/internal/middleware"
	"storefront/internal/session"
)

//go:embed templates/admin/*.html templates/public/*.html
var templateFS embed.FS

// PageData is passed to every template.
type PageData struct {
	Title     string
	Section   string        // active admin nav entry
	Session   *session.Data // nil on public pages
	CSRFToken string
	Locale    i18n.Locale
	Path      string
	Data      map[string]any
	Flashes   []Flash
}

// Flash is a one-time notice shown above the page content.
type Flash struct {
	Type    string // "success", "error"
	Message string
}

// T translates key into the page's locale.
func (p *PageData) T(key string, kv ...any) string {
	return i18n.Translator(p.Locale)(key, kv...)
}

// Price formats euro cents for the page's locale.
func (p *PageData) Price(cents int) string {
	return i18n.FormatPrice(p.Locale, cents)
}

// Renderer holds the parsed admin and public template sets.
type Renderer struct {
	admin  map[string]*template.Template
	public map[string]*template.Template
}

// standaloneTemplates render without the admin layout.
var standaloneTemplates = map[string]bool{
	"login":      true,
	"2fa_setup":  true,
	"2fa_verify": true,
}

var funcMap = template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	// catIndent prefixes a category title with one dash per level so the
	// parent picker shows the hierarchy.
	"catIndent": func(depth int, title string) string {
		if depth <= 0 {
			return title
		}
		return strings.Repeat("— ", depth) + title
	},
	"markdown": markdown.Render,
	"excerpt":  markdown.Excerpt,
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"datetime": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
	"isID": func(p *int64, id int64) bool {
		return p != nil && *p == id
	},
	"hasID": func(ids []int64, id int64) bool {
		for _, v := range ids {
			if v == id {
				return true
			}
		}
		return false
	},
}

// New parses every embedded template. Each page is paired with its
// section's base.html unless it is standalone.
func New() (*Renderer, error) {
	admin, err := parseSet("admin")
	if err != nil {
		return nil, err
	}
	public, err := parseSet("public")
	if err != nil {
		return nil, err
	}
	return &Renderer{admin: admin, public: public}, nil
}

func parseSet(dir string) (map[string]*template.Template, error) {
	pages, err := fs.Glob(templateFS, "templates/"+dir+"/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob %s templates: %w", dir, err)
	}

	base := "templates/" + dir + "/base.html"
	set := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		file := path.Base(page)
		if file == "base.html" {
			continue
		}
		name := strings.TrimSuffix(file, ".html")

		var tmpl *template.Template
		if dir == "admin" && standaloneTemplates[name] {
			tmpl, err = template.New(file).Funcs(funcMap).ParseFS(templateFS, page)
		} else {
			tmpl, err = template.New("base.html").Funcs(funcMap).ParseFS(templateFS, base, page)
		}
		if err != nil {
			return nil, fmt.Errorf("parse template %s/%s: %w", dir, file, err)
		}
		set[name] = tmpl
	}
	return set, nil
}

// Page renders an admin page. The CSRF token, session and locale are taken
// from the request context when the caller did not set them.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus is Page with an explicit status code, for re-rendering a form
// with validation errors.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.admin[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
	if data.Locale == "" {
		data.Locale = middleware.LocaleFromCtx(r.Context())
	}
	data.Path = r.URL.Path

	root := "base.html"
	if standaloneTemplates[name] {
		root = name + ".html"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, root, data); err != nil {
		slog.Error("render admin template", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Public renders a storefront page to bytes. Public output carries no
// session or CSRF data, so it can be shared through the page cache.
func (rn *Renderer) Public(name string, data *PageData) ([]byte, error) {
	tmpl, ok := rn.public[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	if data.Locale == "" {
		data.Locale = i18n.SK
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
