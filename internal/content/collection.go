package content

import (
	"log/slog"
	"sort"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// Collection is an ordered set of posts with unique, non-empty slugs.
type Collection struct {
	posts    []Post
	bySlug   map[string]int
	excluded []Post
}

// NewCollection keeps posts in source order. A post whose slug is empty or
// already taken by an earlier post is excluded and logged.
func NewCollection(posts []Post, logger *slog.Logger) *Collection {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Collection{bySlug: make(map[string]int, len(posts))}
	for _, p := range posts {
		if p.Slug == "" {
			logger.Warn("Excluding post with empty slug", logfields.Post(p.Title), slog.Int("id", p.ID))
			c.excluded = append(c.excluded, p)
			continue
		}
		if first, dup := c.bySlug[p.Slug]; dup {
			logger.Warn("Excluding post with duplicate slug",
				logfields.Slug(p.Slug), logfields.Post(p.Title),
				slog.Int("id", p.ID), slog.Int("first_id", c.posts[first].ID))
			c.excluded = append(c.excluded, p)
			continue
		}
		c.bySlug[p.Slug] = len(c.posts)
		c.posts = append(c.posts, p)
	}
	return c
}

// Posts returns the posts in source order.
func (c *Collection) Posts() []Post {
	out := make([]Post, len(c.posts))
	copy(out, c.posts)
	return out
}

// Excluded returns posts dropped because of an empty or duplicate slug.
func (c *Collection) Excluded() []Post {
	return append([]Post(nil), c.excluded...)
}

func (c *Collection) Len() int { return len(c.posts) }

// BySlug finds a post by slug.
func (c *Collection) BySlug(s string) (Post, bool) {
	i, ok := c.bySlug[s]
	if !ok {
		return Post{}, false
	}
	return c.posts[i], true
}

// Latest returns up to n posts, newest first. Posts without a parseable date
// sort after dated ones; ties keep source order.
func (c *Collection) Latest(n int) []Post {
	sorted := byDateDesc(c.posts)
	if n < 0 || n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Related returns up to n posts sharing a tag with post, in source order,
// topped up with the most recent remaining posts. post itself and duplicates
// are never included.
func (c *Collection) Related(post Post, n int) []Post {
	if n <= 0 {
		return []Post{}
	}
	related := make([]Post, 0, n)
	seen := map[string]bool{post.Slug: true}

	if len(post.Tags) > 0 {
		for _, other := range c.posts {
			if len(related) == n {
				return related
			}
			if seen[other.Slug] || !post.SharesTag(other) {
				continue
			}
			seen[other.Slug] = true
			related = append(related, other)
		}
	}

	for _, other := range byDateDesc(c.posts) {
		if len(related) == n {
			break
		}
		if seen[other.Slug] {
			continue
		}
		seen[other.Slug] = true
		related = append(related, other)
	}
	return related
}

func byDateDesc(posts []Post) []Post {
	sorted := make([]Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].PublishedAt, sorted[j].PublishedAt
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})
	return sorted
}
