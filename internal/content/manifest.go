package content

import "time"

// ManifestEntry is one post in blogs.json.
type ManifestEntry struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	URL         string    `json:"url"`
	Date        string    `json:"date"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Manifest is the blogs.json metadata file.
type Manifest struct {
	LastBuild time.Time       `json:"lastBuild"`
	Posts     []ManifestEntry `json:"posts"`
}

// NewManifest lists posts in order. urlFor chooses the link form and
// generatedAt the per-post timestamp.
func NewManifest(posts []Post, lastBuild time.Time, urlFor func(Post) string, generatedAt func(Post) time.Time) Manifest {
	m := Manifest{LastBuild: lastBuild, Posts: make([]ManifestEntry, 0, len(posts))}
	for _, p := range posts {
		m.Posts = append(m.Posts, ManifestEntry{
			ID:          p.ID,
			Title:       p.Title,
			Slug:        p.Slug,
			URL:         urlFor(p),
			Date:        p.Date,
			GeneratedAt: generatedAt(p),
		})
	}
	return m
}
