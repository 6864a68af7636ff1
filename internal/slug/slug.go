// Package slug derives URL-safe identifiers from post titles.
package slug

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// Whitespace also covers \v, space separators, U+2028, U+2029 and the BOM.
	whitespaceRe = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)
	nonWordRe    = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	hyphenRunRe  = regexp.MustCompile(`-{2,}`)

	lower = cases.Lower(language.Und)
)

// Slugify lowercases title, turns whitespace runs into hyphens, drops every
// character outside [A-Za-z0-9_-], collapses hyphen runs and trims hyphens
// from both ends. Non-ASCII letters are dropped, so "Café" becomes "caf".
func Slugify(title string) string {
	s := lower.String(title)
	s = whitespaceRe.ReplaceAllString(s, "-")
	s = nonWordRe.ReplaceAllString(s, "")
	s = hyphenRunRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// URL returns the site path of the post page for a slug.
func URL(slug string) string {
	return "/posts/" + slug
}
