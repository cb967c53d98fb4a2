// Package web は画面のハンドラーとテンプレート描画を提供します。
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin/render"

	"github.com/yourusername/biblioteca-web/internal/auth"
	"github.com/yourusername/biblioteca-web/internal/model"
)

//go:embed templates
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Renderer はページごとに layout と組み合わせたテンプレートを保持する gin の HTMLRender です。
type Renderer struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

// NewRenderer は埋め込みテンプレートを読み込みます。
func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Pages は読み込んだページ名の一覧を返します。
func (r *Renderer) Pages() []string {
	names := make([]string, 0, len(r.pages))
	for name := range r.pages {
		names = append(names, name)
	}
	return names
}

// Instance は name のページを layout で包んで描画します。
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		return missingPage(name)
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}

type missingPage string

func (m missingPage) Render(http.ResponseWriter) error {
	return fmt.Errorf("template %q is not defined", string(m))
}

func (missingPage) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if header.Get("Content-Type") == "" {
		header.Set("Content-Type", "text/html; charset=utf-8")
	}
}

var templateFuncs = template.FuncMap{
	"fecha": func(d model.Date) string {
		if d.IsZero() {
			return "-"
		}
		return d.String()
	},
	"fechaReal": func(d *model.Date) string {
		if d == nil || d.IsZero() {
			return "-"
		}
		return d.String()
	},
	"primeros": func(n int, items []string) []string {
		if len(items) <= n {
			return items
		}
		return items[:n]
	},
	"keywords": model.JoinKeywords,
	"field": func(fields model.FieldErrors, name string) string {
		return fields[name]
	},
	"navLinks": navLinks,
}

type navLink struct {
	To    string
	Label string
}

var (
	adminLinks = []navLink{
		{"/admin/dashboard", "Dashboard"},
		{"/admin/materiales", "Materiales"},
		{"/admin/usuarios", "Usuarios"},
		{"/admin/prestamos", "Préstamos"},
		{"/admin/registro-material", "Registrar Material"},
		{"/admin/registro-usuario", "Registrar Usuario"},
		{"/admin/registro-prestamo", "Registrar Préstamo"},
	}
	userLinks = []navLink{
		{"/user/dashboard", "Dashboard"},
		{"/user/catalogo", "Catálogo"},
		{"/user/mis-prestamos", "Mis Préstamos"},
	}
)

func navLinks(s auth.Session) []navLink {
	if s.IsAdmin() {
		return adminLinks
	}
	return userLinks
}
