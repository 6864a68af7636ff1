// Package site renders the static export of the blog: home, paginated
// listing, post, about and not-found pages plus the blogs.json manifest.
package site

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
	"git.home.luguber.info/inful/blogbuilder/internal/paginate"
	"git.home.luguber.info/inful/blogbuilder/internal/state"
)

const (
	LongDate  = "January 2, 2006"
	ShortDate = "Jan 2, 2006"

	ExcerptRunes         = 100
	MetaDescriptionRunes = 160

	ManifestFile = "blogs.json"

	homeFallbackSummary = "Check out this adorable blog post for kawaii inspiration!"
)

// DefaultAboutHTML is used when no about file is configured.
const DefaultAboutHTML = `<h2>Our Story</h2>
<p>We started as two friends sharing cute product discoveries and grew into a blog and community.</p>
<h2>Our Mission</h2>
<p>Help you find adorable, high-quality products that bring joy to everyday life.</p>
<h2>Why Trust Us?</h2>
<p>Every recommendation is researched and tested. We only feature products we genuinely love.</p>`

// Info is the site-wide presentation data.
type Info struct {
	Name             string
	Title            string
	Description      string
	Keywords         []string
	BaseURL          string
	Author           string
	HeroTitle        string
	HeroSubtitle     string
	PlaceholderImage string
}

// Options configures a Renderer.
type Options struct {
	Site         Info
	OutputDir    string
	PostsPerPage int
	HomeLatest   int
	Related      int
	AboutHTML    template.HTML
	LiveReload   bool
	Generator    string
	Now          func() time.Time
	Logger       *slog.Logger
}

// Result lists what a render produced, relative to the output directory.
type Result struct {
	Pages        []string
	PostPages    int
	ListingPages int
}

// Renderer writes the static export.
type Renderer struct {
	opts    Options
	layouts *Layouts
}

func NewRenderer(layouts *Layouts, opts Options) *Renderer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.AboutHTML == "" {
		opts.AboutHTML = DefaultAboutHTML
	}
	return &Renderer{opts: opts, layouts: layouts}
}

// card is a post summary shown on home, listing and related sections.
type card struct {
	Title     string
	URL       string
	Image     string
	DateLong  string
	DateShort string
	ReadTime  string
	Summary   string
	Excerpt   string
}

type shareLinks struct {
	Twitter   string
	Pinterest string
	Facebook  string
}

type postView struct {
	Title    string
	Image    string
	DateLong string
	ReadTime string
	HTML     template.HTML
	JSONLD   blogPosting
	Share    shareLinks
}

type person struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type blogPosting struct {
	Context       string `json:"@context"`
	Type          string `json:"@type"`
	Headline      string `json:"headline"`
	Description   string `json:"description"`
	Author        person `json:"author"`
	DatePublished string `json:"datePublished"`
	Image         string `json:"image"`
}

type pageData struct {
	Site        Info
	Title       string
	Description string
	Keywords    string
	Canonical   string
	LiveReload  bool
	Generator   string
	Year        int

	Latest     []card
	Page       paginate.Page[card]
	TotalPages int
	Post       postView
	Related    []card
	AboutHTML  template.HTML
}

// Render writes every page for the collection.
func (r *Renderer) Render(ctx context.Context, coll *content.Collection) (Result, error) {
	var res Result
	posts := coll.Posts()

	write := func(rel, layout string, data pageData) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.writePage(rel, layout, data); err != nil {
			return err
		}
		res.Pages = append(res.Pages, rel)
		return nil
	}

	home := r.basePage(r.opts.Site.Title, r.opts.Site.Description, "/")
	home.Keywords = strings.Join(r.opts.Site.Keywords, ", ")
	home.Latest = r.cards(coll.Latest(r.opts.HomeLatest))
	if err := write("index.html", LayoutHome, home); err != nil {
		return res, err
	}

	allCards := r.cards(posts)
	pages := paginate.All(allCards, r.opts.PostsPerPage)
	for _, page := range pages {
		data := r.basePage("Blog - "+r.opts.Site.Name, "Read our latest blog posts.", "/blogs/"+strconv.Itoa(page.CurrentPage))
		data.Page = page
		data.TotalPages = max(page.TotalPages, 1)
		if err := write(filepath.Join("blogs", strconv.Itoa(page.CurrentPage)+".html"), LayoutBlogs, data); err != nil {
			return res, err
		}
		if page.CurrentPage == 1 {
			data.Canonical = r.absolute("/blogs")
			if err := write("blogs.html", LayoutBlogs, data); err != nil {
				return res, err
			}
		}
		res.ListingPages++
	}

	for _, p := range posts {
		data := r.postPage(p, coll.Related(p, r.opts.Related))
		if err := write(filepath.Join("posts", p.Slug+".html"), LayoutPost, data); err != nil {
			return res, err
		}
		res.PostPages++
	}

	about := r.basePage("About Us | "+r.opts.Site.Name, "Learn about "+r.opts.Site.Name+".", "/about")
	about.AboutHTML = r.opts.AboutHTML
	if err := write("about.html", LayoutAbout, about); err != nil {
		return res, err
	}

	if err := write("404.html", LayoutNotFound, r.basePage("Post Not Found | "+r.opts.Site.Name, "The requested blog post could not be found.", "")); err != nil {
		return res, err
	}

	r.opts.Logger.Info("Rendered site",
		logfields.Count(len(res.Pages)), slog.Int("posts", res.PostPages), slog.Int("listing_pages", res.ListingPages))
	return res, nil
}

// WriteManifest writes blogs.json describing every post in the collection.
func (r *Renderer) WriteManifest(coll *content.Collection) (content.Manifest, error) {
	now := r.opts.Now().UTC()
	m := content.NewManifest(coll.Posts(), now,
		func(p content.Post) string { return p.URL },
		func(content.Post) time.Time { return now })
	if err := state.WriteJSON(filepath.Join(r.opts.OutputDir, ManifestFile), m); err != nil {
		return m, ferrors.FileSystemError("write manifest").WithCause(err).Build()
	}
	return m, nil
}

func (r *Renderer) writePage(rel, layout string, data pageData) error {
	var buf bytes.Buffer
	if err := r.layouts.Execute(&buf, layout, data); err != nil {
		return ferrors.RenderError("render page").WithCause(err).
			WithContext("page", rel).WithContext("layout", layout).Build()
	}
	target := filepath.Join(r.opts.OutputDir, rel)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return ferrors.FileSystemError("create page directory").WithCause(err).Build()
	}
	if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
		return ferrors.FileSystemError("write page").WithCause(err).WithContext("page", rel).Build()
	}
	r.opts.Logger.Debug("Wrote page", logfields.File(rel))
	return nil
}

func (r *Renderer) basePage(title, description, path string) pageData {
	d := pageData{
		Site:        r.opts.Site,
		Title:       title,
		Description: description,
		LiveReload:  r.opts.LiveReload,
		Generator:   r.opts.Generator,
		Year:        r.opts.Now().Year(),
	}
	if path != "" {
		d.Canonical = r.absolute(path)
	}
	return d
}

func (r *Renderer) postPage(p content.Post, related []content.Post) pageData {
	desc := MetaDescription(p)
	d := r.basePage(p.Title+" | "+r.opts.Site.Name, desc, p.URL)
	d.Keywords = strings.Join(p.Keywords, ", ")
	image := r.image(p)
	d.Post = postView{
		Title:    p.Title,
		Image:    image,
		DateLong: content.FormatDate(p.Date, LongDate),
		ReadTime: p.ReadTime,
		HTML:     template.HTML(p.HTMLContent), //nolint:gosec // rendered from the site's own markdown
		JSONLD: blogPosting{
			Context:       "https://schema.org",
			Type:          "BlogPosting",
			Headline:      p.Title,
			Description:   desc,
			Author:        person{Type: "Person", Name: r.opts.Site.Author},
			DatePublished: p.Date,
			Image:         image,
		},
		Share: r.share(p),
	}
	d.Related = r.cards(related)
	return d
}

// MetaDescription is the post's meta description, or the start of its body
// as plain text.
func MetaDescription(p content.Post) string {
	if p.MetaDescription != "" {
		return p.MetaDescription
	}
	body := p.Content
	if p.HTMLContent != "" {
		body = markdown.PlainText(p.HTMLContent)
	}
	return markdown.Truncate(body, MetaDescriptionRunes)
}

// Excerpt is the listing teaser: the first runes of the markdown body.
func Excerpt(p content.Post) string {
	return markdown.Truncate(p.Content, ExcerptRunes) + "..."
}

func (r *Renderer) cards(posts []content.Post) []card {
	out := make([]card, 0, len(posts))
	for _, p := range posts {
		summary := p.MetaDescription
		if summary == "" {
			summary = homeFallbackSummary
		}
		out = append(out, card{
			Title:     p.Title,
			URL:       p.URL,
			Image:     r.image(p),
			DateLong:  content.FormatDate(p.Date, LongDate),
			DateShort: content.FormatDate(p.Date, ShortDate),
			ReadTime:  p.ReadTime,
			Summary:   summary,
			Excerpt:   Excerpt(p),
		})
	}
	return out
}

func (r *Renderer) image(p content.Post) string {
	if p.Image != "" {
		return p.Image
	}
	return r.opts.Site.PlaceholderImage
}

func (r *Renderer) absolute(path string) string {
	if r.opts.Site.BaseURL == "" {
		return ""
	}
	return strings.TrimSuffix(r.opts.Site.BaseURL, "/") + path
}

func (r *Renderer) share(p content.Post) shareLinks {
	target := r.absolute(p.URL)
	if target == "" {
		target = p.URL
	}
	u := url.QueryEscape(target)
	return shareLinks{
		Twitter:   "https://twitter.com/intent/tweet?url=" + u + "&text=" + url.QueryEscape(p.Title),
		Pinterest: "https://pinterest.com/pin/create/button/?url=" + u + "&description=" + url.QueryEscape(p.Title),
		Facebook:  "https://www.facebook.com/sharer/sharer.php?u=" + u,
	}
}
