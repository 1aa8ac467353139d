package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"
)

//go:embed templates/*.html
var embedded embed.FS

const layoutFile = "layout.html"

// Page is the data every template receives. Content carries the page
// specific view.
type Page struct {
	Title  string
	User   string
	Active string
	Flash  *FlashMessage

	Content any
}

// Renderer executes a page template inside the shared layout.
type Renderer struct {
	logger *slog.Logger

	// dir, when set, is re-read on every render.
	dir   string
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates. A non-empty dir replaces them
// with the files on disk and reloads them on each render.
func NewRenderer(dir string, logger *slog.Logger) (*Renderer, error) {
	r := &Renderer{logger: logger, dir: dir}
	pages, err := parse(r.source())
	if err != nil {
		return nil, err
	}
	r.pages = pages
	return r, nil
}

func (r *Renderer) source() fs.FS {
	if r.dir != "" {
		return os.DirFS(r.dir)
	}
	sub, _ := fs.Sub(embedded, "templates")
	return sub
}

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
		return t.Format("02/01/2006")
	},
}

// parse builds one template set per page so each can define "content".
func parse(fsys fs.FS) (map[string]*template.Template, error) {
	layout, err := template.New(layoutFile).Funcs(funcs).ParseFS(fsys, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("web: failed to parse layout: %w", err)
	}

	names, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		t, err := template.Must(layout.Clone()).ParseFS(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("web: failed to parse %s: %w", name, err)
		}
		pages[strings.TrimSuffix(path.Base(name), ".html")] = t
	}
	return pages, nil
}

// Render writes page with status. Output is buffered so a template error
// never leaves a half written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data Page) error {
	pages := r.pages
	if r.dir != "" {
		reloaded, err := parse(r.source())
		if err != nil {
			r.logger.Error("failed to reload templates", "dir", r.dir, "error", err)
			return err
		}
		pages = reloaded
	}

	t, ok := pages[page]
	if !ok {
		return fmt.Errorf("web: template %q not found", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutFile, data); err != nil {
		r.logger.Error("failed to execute template", "page", page, "error", err)
		return fmt.Errorf("web: template execution failed for %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
