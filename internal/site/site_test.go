package site

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
)

func testPost(id int, slug, title, date string, tags ...string) content.Post {
	p := content.Post{
		ID:          id,
		Title:       title,
		Slug:        slug,
		URL:         "/posts/" + slug,
		Date:        date,
		Content:     strings.Repeat(title+" ", 40),
		HTMLContent: "<p>" + title + " <strong>body</strong></p>",
		Tags:        tags,
		Keywords:    []string{},
		ReadTime:    "3 min read",
	}
	p.PublishedAt, _ = content.ParseDate(date)
	return p
}

func render(t *testing.T, posts []content.Post, mutate func(*Options)) (string, Result) {
	t.Helper()
	out := t.TempDir()
	layouts, err := LoadLayouts("")
	require.NoError(t, err)

	opts := Options{
		Site: Info{
			Name:             "Cute Finds",
			Title:            "Home Title",
			Description:      "Site description",
			BaseURL:          "https://blog.example.com",
			Author:           "blushify Team",
			HeroTitle:        "Hero",
			HeroSubtitle:     "Sub",
			PlaceholderImage: "https://via.placeholder.com/400x250",
		},
		OutputDir:    out,
		PostsPerPage: 3,
		HomeLatest:   2,
		Related:      2,
		Generator:    "test",
		Now:          func() time.Time { return time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC) },
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if mutate != nil {
		mutate(&opts)
	}
	logger := opts.Logger
	coll := content.NewCollection(posts, logger)
	r := NewRenderer(layouts, opts)
	res, err := r.Render(context.Background(), coll)
	require.NoError(t, err)
	_, err = r.WriteManifest(coll)
	require.NoError(t, err)
	return out, res
}

func read(t *testing.T, dir, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, rel))
	require.NoError(t, err)
	return string(b)
}

func fivePosts() []content.Post {
	return []content.Post{
		testPost(1, "desk", "Desk Ideas", "2025-01-10", "decor"),
		testPost(2, "lamp", "Lamp Picks", "2025-03-01", "decor"),
		testPost(3, "phone", "Phone Cases", "2025-02-01", "tech"),
		testPost(4, "plush", "Plush Friends", "2024-12-24", "gifts"),
		testPost(5, "mug", "Mug Love", "2024-11-11"),
	}
}

func TestRenderWritesAllPages(t *testing.T) {
	out, res := render(t, fivePosts(), nil)

	for _, rel := range []string{
		"index.html", "blogs.html", "blogs/1.html", "blogs/2.html",
		"posts/desk.html", "posts/mug.html", "about.html", "404.html", "blogs.json",
	} {
		assert.FileExists(t, filepath.Join(out, rel))
	}
	assert.NoFileExists(t, filepath.Join(out, "blogs/3.html"))
	assert.Equal(t, 5, res.PostPages)
	assert.Equal(t, 2, res.ListingPages)
}

func TestHomeShowsLatestPosts(t *testing.T) {
	out, _ := render(t, fivePosts(), nil)
	home := read(t, out, "index.html")

	assert.Contains(t, home, "<title>Home Title</title>")
	assert.Contains(t, home, `href="/posts/lamp"`)
	assert.Contains(t, home, `href="/posts/phone"`)
	assert.NotContains(t, home, `href="/posts/desk"`)
	assert.Contains(t, home, "March 1, 2025")
	assert.Contains(t, home, homeFallbackSummary)
}

func TestListingPagination(t *testing.T) {
	out, _ := render(t, fivePosts(), nil)

	first := read(t, out, "blogs/1.html")
	assert.Contains(t, first, "Page 1 of 2")
	assert.Contains(t, first, `href="/blogs/2"`)
	assert.NotContains(t, first, "Previous")
	assert.Contains(t, first, `href="/posts/desk"`)
	assert.NotContains(t, first, `href="/posts/plush"`)
	assert.Contains(t, first, "January 10, 2025 • 3 min read")

	assert.Equal(t, strings.Replace(first, "https://blog.example.com/blogs/1", "https://blog.example.com/blogs", 1), read(t, out, "blogs.html"))

	second := read(t, out, "blogs/2.html")
	assert.Contains(t, second, "Page 2 of 2")
	assert.Contains(t, second, `href="/blogs/1"`)
	assert.NotContains(t, second, "Next</a>")
	assert.Contains(t, second, `href="/posts/mug"`)
}

func TestListingExcerptAndPlaceholder(t *testing.T) {
	posts := []content.Post{testPost(1, "a", "Alpha", "2025-01-01")}
	posts[0].Content = strings.Repeat("z", 150)
	out, _ := render(t, posts, nil)
	page := read(t, out, "blogs/1.html")
	assert.Contains(t, page, strings.Repeat("z", 100)+"...")
	assert.NotContains(t, page, strings.Repeat("z", 101))
	assert.Contains(t, page, `src="https://via.placeholder.com/400x250"`)
}

func TestEmptySiteStillHasListing(t *testing.T) {
	out, res := render(t, nil, nil)
	assert.Contains(t, read(t, out, "blogs/1.html"), "Page 1 of 1")
	assert.FileExists(t, filepath.Join(out, "blogs.html"))
	assert.Equal(t, 0, res.PostPages)
	assert.Contains(t, read(t, out, "index.html"), "No posts yet.")
}

func TestPostPage(t *testing.T) {
	posts := fivePosts()
	posts[0].MetaDescription = "Desk meta & more"
	posts[0].Keywords = []string{"desk", "pastel"}
	posts[0].Image = "/img/desk.png"
	out, _ := render(t, posts, nil)

	page := read(t, out, "posts/desk.html")
	assert.Contains(t, page, "<title>Desk Ideas | Cute Finds</title>")
	assert.Contains(t, page, `<meta name="description" content="Desk meta &amp; more">`)
	assert.Contains(t, page, `<meta name="keywords" content="desk, pastel">`)
	assert.Contains(t, page, `<meta property="og:image" content="/img/desk.png">`)
	assert.Contains(t, page, `<meta name="twitter:card" content="summary_large_image">`)
	assert.Contains(t, page, `<span class="post-date">January 10, 2025</span>`)
	assert.Contains(t, page, "<p>Desk Ideas <strong>body</strong></p>")
	assert.Contains(t, page, "https://twitter.com/intent/tweet?url=https%3A%2F%2Fblog.example.com%2Fposts%2Fdesk")

	start := strings.Index(page, `<script type="application/ld+json">`)
	require.GreaterOrEqual(t, start, 0)
	rest := page[start+len(`<script type="application/ld+json">`):]
	raw := rest[:strings.Index(rest, "</script>")]
	var ld map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &ld))
	assert.Equal(t, "BlogPosting", ld["@type"])
	assert.Equal(t, "Desk Ideas", ld["headline"])
	assert.Equal(t, "2025-01-10", ld["datePublished"])
	assert.Equal(t, "blushify Team", ld["author"].(map[string]any)["name"])

	// Related: lamp shares the decor tag, then the most recent remaining post.
	related := page[strings.Index(page, "You Might Also Like"):]
	assert.Contains(t, related, `href="/posts/lamp"`)
	assert.Contains(t, related, `href="/posts/phone"`)
	assert.Contains(t, related, "Mar 1, 2025")
}

func TestPostMetaDescriptionFallsBackToBody(t *testing.T) {
	p := testPost(1, "a", "Alpha", "2025-01-01")
	p.Content = "# Desk\n\nSoft *colours*"
	p.HTMLContent = `<h1 id="desk">Desk</h1>
<p>Soft <em>colours</em> <script>track()</script></p>`
	assert.Equal(t, "Desk Soft colours", MetaDescription(p))

	p.HTMLContent = "<p>" + strings.Repeat("y", 200) + "</p>"
	assert.Equal(t, strings.Repeat("y", 160), MetaDescription(p))

	p.HTMLContent = ""
	p.Content = strings.Repeat("z", 200)
	assert.Equal(t, strings.Repeat("z", 160), MetaDescription(p))

	p.MetaDescription = "set"
	assert.Equal(t, "set", MetaDescription(p))
}

func TestManifest(t *testing.T) {
	out, _ := render(t, fivePosts(), nil)
	var m content.Manifest
	require.NoError(t, json.Unmarshal([]byte(read(t, out, "blogs.json")), &m))
	require.Len(t, m.Posts, 5)
	assert.Equal(t, "/posts/desk", m.Posts[0].URL)
	assert.Equal(t, "desk", m.Posts[0].Slug)
}

func TestLiveReloadInjection(t *testing.T) {
	out, _ := render(t, fivePosts()[:1], func(o *Options) { o.LiveReload = true })
	assert.Contains(t, read(t, out, "index.html"), `<script src="/livereload.js"></script>`)

	out, _ = render(t, fivePosts()[:1], nil)
	assert.NotContains(t, read(t, out, "index.html"), "livereload")
}

func TestAboutAndNotFound(t *testing.T) {
	out, _ := render(t, nil, func(o *Options) { o.AboutHTML = "<p>Custom about</p>" })
	assert.Contains(t, read(t, out, "about.html"), "<p>Custom about</p>")
	assert.Contains(t, read(t, out, "404.html"), "Post Not Found")
}

func TestLayoutOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notfound.html"),
		[]byte(`{{define "content"}}<h1>Custom missing page</h1>{{end}}`), 0o600))

	layouts, err := LoadLayouts(dir)
	require.NoError(t, err)
	var sb strings.Builder
	require.NoError(t, layouts.Execute(&sb, LayoutNotFound, pageData{Site: Info{Name: "X"}}))
	assert.Contains(t, sb.String(), "Custom missing page")
	assert.Contains(t, sb.String(), `<a href="/" class="logo">X</a>`)

	require.Error(t, layouts.Execute(&sb, "missing", pageData{}))
}

func TestLayoutOverrideParseError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "home.html"), []byte(`{{define "content"}}{{.Broken`), 0o600))
	_, err := LoadLayouts(dir)
	require.Error(t, err)
}

func TestCopyDir(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "styles.css"), []byte("body{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "img", "a.png"), []byte("png"), 0o644))

	dst := filepath.Join(t.TempDir(), "out")
	n, err := CopyDir(src, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "png", read(t, dst, "img/a.png"))
}
