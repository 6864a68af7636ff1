// Package templates renders posts into a single static HTML template by
// rewriting known elements in place.
package templates

import (
	"html"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
)

// LongDate is the date layout used on post pages.
const LongDate = "January 2, 2006"

// MetaDescriptionRunes bounds the meta description taken from the post body.
const MetaDescriptionRunes = 160

// SubstituteOptions parameterises Substitute.
type SubstituteOptions struct {
	SiteName string
}

type rule struct {
	re    *regexp.Regexp
	value func(p content.Post, opts SubstituteOptions) string
}

var rules = []rule{
	{regexp.MustCompile(`<title>.*?</title>`), func(p content.Post, o SubstituteOptions) string {
		return "<title>" + esc(p.Title) + " | " + esc(o.SiteName) + "</title>"
	}},
	{regexp.MustCompile(`<meta name="description" content=".*?">`), func(p content.Post, _ SubstituteOptions) string {
		return `<meta name="description" content="` + esc(markdown.Truncate(p.Content, MetaDescriptionRunes)) + `">`
	}},
	{regexp.MustCompile(`<meta name="keywords" content=".*?">`), func(p content.Post, _ SubstituteOptions) string {
		return `<meta name="keywords" content="` + esc(strings.Join(p.Tags, ", ")) + `">`
	}},
	{regexp.MustCompile(`<link rel="stylesheet" href="styles\.css">`), func(content.Post, SubstituteOptions) string {
		return `<link rel="stylesheet" href="../styles.css">`
	}},
	{regexp.MustCompile(`<h1>.*?</h1>`), func(p content.Post, _ SubstituteOptions) string {
		return "<h1>" + esc(p.Title) + "</h1>"
	}},
	{regexp.MustCompile(`<span class="post-date">.*?</span>`), func(p content.Post, _ SubstituteOptions) string {
		return `<span class="post-date">` + esc(content.FormatDate(p.Date, LongDate)) + "</span>"
	}},
	{regexp.MustCompile(`<img src=".*?" alt=".*?" class="post-featured-image" loading="lazy">`), func(p content.Post, _ SubstituteOptions) string {
		return `<img src="` + esc(p.Image) + `" alt="` + esc(p.Title) + `" class="post-featured-image" loading="lazy">`
	}},
	{regexp.MustCompile(`<p>Creating an adorable and productive workspace.*?</p>`), func(p content.Post, _ SubstituteOptions) string {
		return "<p>" + esc(p.Content) + "</p>"
	}},
	{regexp.MustCompile(`<script src="main\.js"></script>`), func(content.Post, SubstituteOptions) string {
		return `<script src="../main.js"></script>`
	}},
}

// Substitute fills tmpl with post. Each rule rewrites only its first match;
// elements missing from the template are left alone.
func Substitute(tmpl string, post content.Post, opts SubstituteOptions) string {
	out := tmpl
	for _, r := range rules {
		out = replaceFirst(r.re, out, r.value(post, opts))
	}
	return out
}

func replaceFirst(re *regexp.Regexp, s, replacement string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + replacement + s[loc[1]:]
}

func esc(s string) string { return html.EscapeString(s) }
