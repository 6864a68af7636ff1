package config

import (
	"errors"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
)

// DefaultAboutPath is where Init writes the sample about page.
const DefaultAboutPath = "content/about.md"

const exampleAbout = `## Our Story

We started as two friends sharing cute product discoveries 🌸

## Our Mission

Help you find adorable, high-quality products that bring joy to everyday life.
`

const exampleConfig = `# blogbuilder configuration
site:
  name: "Cute Finds"
  title: "blushify - Top Kawaii & Girly Products for 2025"
  description: "Discover the cutest kawaii accessories, pastel gifts, and girly tech gadgets."
  base_url: "https://example.com"
  author: "blushify Team"
  about_file: content/about.md
  # layouts_dir: layouts
  # static_dir: static

content:
  csv_path: data/blogs.csv
  # repository:
  #   url: https://github.com/example/blog-content.git
  #   branch: main
  #   auth:
  #     type: token
  #     token: ${BLOG_CONTENT_TOKEN}

output:
  directory: out
  clean: true
  state_dir: .blogbuilder

pagination:
  posts_per_page: 3
  home_latest: 2
  related: 2

legacy:
  template: public/blog-post-name.html
  output_dir: public/posts
  manifest: public/blogs.json
  last_run_file: lastRun.json

preview:
  port: 3000
  live_reload: true
  debounce: 300ms

daemon:
  http:
    port: 8080
  schedule:
    interval: 15m
    # cron: "*/30 * * * *"

monitoring:
  metrics:
    enabled: true
    path: /metrics

# notify:
#   nats:
#     url: nats://127.0.0.1:4222
#     subject: blogbuilder.builds

logging:
  level: info
  format: text
`

const exampleCSV = `id,title,date,image,content,tags,readTime,updatedAt
1,Pastel Desk Setup Ideas,2025-01-15,https://via.placeholder.com/400x250,"---
metaDescription: Soft pastel desk ideas for a cosy workspace
keywords: pastel desk, kawaii workspace
---
# Pastel Desk Setup Ideas

Creating an adorable workspace starts with a soft colour palette ✨",decor|desk,4 min read,2025-01-15T09:00:00Z
2,Cutest Tech Gadgets,2025-02-01,https://via.placeholder.com/400x250,"Pink keyboards, bunny earbuds and more 💖",tech|gifts,3 min read,2025-02-01T09:00:00Z
`

// Init writes an example configuration file and, when missing, a sample
// post source and about page next to it.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).Build()
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return ferrors.FileSystemError("write configuration file").WithCause(err).
			WithContext("path", configPath).Build()
	}

	dir := filepath.Dir(configPath)
	if err := writeIfMissing(filepath.Join(dir, DefaultCSVPath), []byte(exampleCSV)); err != nil {
		return err
	}
	about, err := frontmatter.Compose(frontmatter.Fields{
		"title":       "About Us",
		"description": "Who we are and why we love cute things.",
	}, []byte(exampleAbout))
	if err != nil {
		return ferrors.InternalError("compose sample about page").WithCause(err).Build()
	}
	return writeIfMissing(filepath.Join(dir, DefaultAboutPath), about)
}

func writeIfMissing(path string, data []byte) error {
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ferrors.FileSystemError("create directory").WithCause(err).
			WithContext("path", filepath.Dir(path)).Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ferrors.FileSystemError("write sample file").WithCause(err).
			WithContext("path", path).Build()
	}
	return nil
}
