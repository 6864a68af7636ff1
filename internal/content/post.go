// Package content loads blog posts from tabular sources and answers queries over them.
package content

import (
	"strings"
	"time"
)

// Post is one blog entry after column mapping, front matter overrides and rendering.
type Post struct {
	ID              int               `json:"id"`
	Title           string            `json:"title"`
	Date            string            `json:"date"`
	PublishedAt     time.Time         `json:"publishedAt"`
	Image           string            `json:"image"`
	Content         string            `json:"content"`
	HTMLContent     string            `json:"htmlContent"`
	Description     string            `json:"description"`
	MetaDescription string            `json:"metaDescription"`
	Tags            []string          `json:"tags"`
	Keywords        []string          `json:"keywords"`
	ReadTime        string            `json:"readTime"`
	UpdatedAt       string            `json:"updatedAt"`
	Slug            string            `json:"slug"`
	URL             string            `json:"url"`
	Extra           map[string]string `json:"extra,omitempty"`
	FrontMatter     map[string]any    `json:"frontMatter,omitempty"`
}

// HasTag reports whether the post carries tag.
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SharesTag reports whether p and other have at least one tag in common.
func (p Post) SharesTag(other Post) bool {
	for _, t := range p.Tags {
		if other.HasTag(t) {
			return true
		}
	}
	return false
}

// Updated parses UpdatedAt. ok is false when the value is empty or not a timestamp.
func (p Post) Updated() (time.Time, bool) {
	return ParseDate(p.UpdatedAt)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// ParseDate accepts the date spellings found in post sources. Results are UTC.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatDate renders raw with layout, or returns raw unchanged when it does not parse.
func FormatDate(raw, layout string) string {
	if t, ok := ParseDate(raw); ok {
		return t.Format(layout)
	}
	return raw
}
