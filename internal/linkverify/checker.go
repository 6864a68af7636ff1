package linkverify

import (
	"context"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// BrokenLink is an internal link whose target is missing from the output.
type BrokenLink struct {
	Source string `json:"source"` // page path relative to the output root
	URL    string `json:"url"`
	Tag    string `json:"tag"`
}

// Report summarizes a check run.
type Report struct {
	Pages  int          `json:"pages"`
	Links  int          `json:"links"` // internal links checked
	Broken []BrokenLink `json:"broken"`
}

// OK reports whether no broken links were found.
func (r Report) OK() bool { return len(r.Broken) == 0 }

// Checker walks an exported site.
type Checker struct {
	root   string
	logger *slog.Logger
}

// NewChecker creates a checker for the output directory root.
func NewChecker(root string, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{root: root, logger: logger}
}

// Check parses every .html file under the root and verifies its internal links.
func (c *Checker) Check(ctx context.Context) (Report, error) {
	var rep Report
	err := filepath.WalkDir(c.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".html") {
			return nil
		}
		rel, err := filepath.Rel(c.root, p)
		if err != nil {
			return err
		}
		return c.checkPage(filepath.ToSlash(rel), p, &rep)
	})
	if err != nil {
		return rep, errors.WrapError(err, errors.CategoryFileSystem, "walk output directory").
			WithContext("path", c.root).Build()
	}
	sort.SliceStable(rep.Broken, func(i, j int) bool {
		if rep.Broken[i].Source != rep.Broken[j].Source {
			return rep.Broken[i].Source < rep.Broken[j].Source
		}
		return rep.Broken[i].URL < rep.Broken[j].URL
	})
	c.logger.Debug("Link check finished",
		slog.Int("pages", rep.Pages), slog.Int("links", rep.Links), slog.Int("broken", len(rep.Broken)))
	return rep, nil
}

func (c *Checker) checkPage(rel, abs string, rep *Report) error {
	f, err := os.Open(filepath.Clean(abs))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	links, err := ExtractLinks(f)
	if err != nil {
		c.logger.Warn("Skipping unparsable page", logfields.Path(rel), logfields.Error(err))
		return nil
	}
	rep.Pages++
	for _, l := range links {
		if !IsInternal(l.URL) {
			continue
		}
		rep.Links++
		if !c.resolves(rel, l.URL) {
			rep.Broken = append(rep.Broken, BrokenLink{Source: rel, URL: l.URL, Tag: l.Tag})
		}
	}
	return nil
}

// resolves maps href to a file: "/x" is tried as x, x.html and x/index.html
// under the root; relative hrefs resolve against the page's directory.
func (c *Checker) resolves(sourceRel, href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	p, err := url.PathUnescape(u.EscapedPath())
	if err != nil {
		p = u.Path
	}
	if !strings.HasPrefix(p, "/") {
		p = path.Join(path.Dir("/"+sourceRel), p)
	}
	clean := strings.TrimPrefix(path.Clean(p), "/")

	var candidates []string
	switch {
	case clean == "" || clean == ".":
		candidates = []string{"index.html"}
	case strings.HasSuffix(p, "/"):
		candidates = []string{path.Join(clean, "index.html")}
	default:
		candidates = []string{clean, clean + ".html", path.Join(clean, "index.html")}
	}
	for _, cand := range candidates {
		if info, err := os.Stat(filepath.Join(c.root, filepath.FromSlash(cand))); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}
