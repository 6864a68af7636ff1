package linkverify

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
}

func TestExtractLinks(t *testing.T) {
	links, err := ExtractLinks(strings.NewReader(`<html><head>
<link rel="stylesheet" href="/style.css"><script src="/livereload.js"></script></head>
<body><a href="/posts/a">A</a><img src="/img/a.png"><a>no href</a></body></html>`))
	require.NoError(t, err)
	require.Len(t, links, 4)
	assert.Equal(t, Link{URL: "/style.css", Tag: "link", Attribute: "href"}, links[0])
	assert.Equal(t, "script", links[1].Tag)
	assert.Equal(t, "/posts/a", links[2].URL)
	assert.Equal(t, "img", links[3].Tag)
}

func TestIsInternal(t *testing.T) {
	tests := map[string]bool{
		"/posts/a":                 true,
		"posts/a.html":             true,
		"../about":                 true,
		"/blogs?page=2":            true,
		"#top":                     false,
		"":                         false,
		"mailto:hi@example.com":    false,
		"tel:+123":                 false,
		"https://example.com/x":    false,
		"//cdn.example.com/lib.js": false,
		"javascript:void(0)":       false,
	}
	for href, want := range tests {
		assert.Equal(t, want, IsInternal(href), href)
	}
}

func TestCheck(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.html", `<a href="/">home</a><a href="/posts/a">a</a><a href="/blogs">b</a>
<a href="/about#team">about</a><a href="/missing">x</a><a href="https://example.com">ext</a>`)
	writeFile(t, root, "posts/a.html", `<a href="../about.html">about</a><a href="b">sibling</a><img src="/img/a.png">`)
	writeFile(t, root, "blogs.html", `<a href="/blogs/">dir</a>`)
	writeFile(t, root, "blogs/index.html", `ok`)
	writeFile(t, root, "about.html", `<a href="mailto:hi@example.com">mail</a>`)

	rep, err := NewChecker(root, slog.New(slog.NewTextHandler(io.Discard, nil))).Check(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 5, rep.Pages)
	assert.Equal(t, 9, rep.Links)
	assert.False(t, rep.OK())
	assert.Equal(t, []BrokenLink{
		{Source: "index.html", URL: "/missing", Tag: "a"},
		{Source: "posts/a.html", URL: "/img/a.png", Tag: "img"},
		{Source: "posts/a.html", URL: "b", Tag: "a"},
	}, rep.Broken)
}

func TestCheckCleanSite(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.html", `<a href="/posts/a">a</a>`)
	writeFile(t, root, "posts/a.html", `<a href="/">home</a>`)
	rep, err := NewChecker(root, nil).Check(t.Context())
	require.NoError(t, err)
	assert.True(t, rep.OK())
}
