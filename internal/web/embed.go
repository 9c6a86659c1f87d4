package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
)

//go:embed templates
var TemplatesFS embed.FS

//go:embed static
var StaticFS embed.FS

// Pages lists the templates the handlers render. LoadTemplates fails if any
// of them is missing.
var Pages = []string{
	"authentication.html",
	"register.html",
	"home.html",
	"guest_home.html",
	"org_login.html",
	"org_register.html",
	"org_home.html",
}

// Templates holds one parsed template set per page. Every page defines the
// same "nav" and "content" blocks, so they cannot share a single set.
type Templates struct {
	pages map[string]*template.Template
}

// LoadTemplates parses every page under templates/pages on top of the base
// layout.
func LoadTemplates() (*Templates, error) {
	return loadTemplates(TemplatesFS, Pages)
}

func loadTemplates(fsys fs.FS, required []string) (*Templates, error) {
	base, err := template.ParseFS(fsys, "templates/layouts/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base layout: %w", err)
	}

	entries, err := fs.ReadDir(fsys, "templates/pages")
	if err != nil {
		return nil, fmt.Errorf("reading pages: %w", err)
	}

	t := &Templates{pages: make(map[string]*template.Template, len(entries))}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		page, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := page.ParseFS(fsys, path.Join("templates/pages", entry.Name())); err != nil {
			return nil, fmt.Errorf("parsing page %s: %w", entry.Name(), err)
		}
		t.pages[entry.Name()] = page
	}

	for _, name := range required {
		if !t.Has(name) {
			return nil, fmt.Errorf("page template %s is missing", name)
		}
	}

	return t, nil
}

// ExecuteTemplate renders the named page through the base layout.
func (t *Templates) ExecuteTemplate(w io.Writer, name string, data any) error {
	page, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return page.ExecuteTemplate(w, "base.html", data)
}

// Has reports whether a page template with that name was loaded.
func (t *Templates) Has(name string) bool {
	_, ok := t.pages[name]
	return ok
}

// GetStaticFS returns the static file system for serving static files
func GetStaticFS() (fs.FS, error) {
	return fs.Sub(StaticFS, "static")
}
