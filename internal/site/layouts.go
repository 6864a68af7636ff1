package site

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed layouts/*.html
var embeddedLayouts embed.FS

// Page layouts. Each is rendered inside base.html.
const (
	LayoutHome     = "home"
	LayoutBlogs    = "blogs"
	LayoutPost     = "post"
	LayoutAbout    = "about"
	LayoutNotFound = "notfound"
	layoutBase     = "base"
)

var pageLayouts = []string{LayoutHome, LayoutBlogs, LayoutPost, LayoutAbout, LayoutNotFound}

// Layouts holds the parsed page templates.
type Layouts struct {
	pages map[string]*template.Template
}

// LoadLayouts parses the embedded layouts. A file <name>.html in overrideDir
// replaces the embedded layout of the same name.
func LoadLayouts(overrideDir string) (*Layouts, error) {
	baseSrc, err := readLayout(overrideDir, layoutBase)
	if err != nil {
		return nil, err
	}
	base, err := template.New(layoutBase).Parse(baseSrc)
	if err != nil {
		return nil, fmt.Errorf("parse layout %s: %w", layoutBase, err)
	}

	l := &Layouts{pages: make(map[string]*template.Template, len(pageLayouts))}
	for _, name := range pageLayouts {
		src, err := readLayout(overrideDir, name)
		if err != nil {
			return nil, err
		}
		page, err := template.Must(base.Clone()).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse layout %s: %w", name, err)
		}
		l.pages[name] = page
	}
	return l, nil
}

func readLayout(overrideDir, name string) (string, error) {
	file := name + ".html"
	if overrideDir != "" {
		data, err := os.ReadFile(filepath.Join(overrideDir, file))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read layout override %s: %w", file, err)
		}
	}
	data, err := embeddedLayouts.ReadFile("layouts/" + file)
	if err != nil {
		return "", fmt.Errorf("read embedded layout %s: %w", file, err)
	}
	return string(data), nil
}

// Execute renders page with data.
func (l *Layouts) Execute(w io.Writer, page string, data any) error {
	t, ok := l.pages[page]
	if !ok {
		return fmt.Errorf("unknown layout %q", page)
	}
	return t.ExecuteTemplate(w, layoutBase, data)
}
