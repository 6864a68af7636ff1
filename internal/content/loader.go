package content

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/slug"
)

// Known source columns.
const (
	ColumnID        = "id"
	ColumnTitle     = "title"
	ColumnDate      = "date"
	ColumnImage     = "image"
	ColumnContent   = "content"
	ColumnTags      = "tags"
	ColumnReadTime  = "readTime"
	ColumnUpdatedAt = "updatedAt"
)

// TagSeparator splits the tags column.
const TagSeparator = "|"

// Renderer turns a markdown body into HTML.
type Renderer interface {
	Render(source []byte) (string, error)
}

// LoadOptions configures LoadCSV.
type LoadOptions struct {
	// Renderer fills HTMLContent. Nil leaves HTMLContent empty.
	Renderer Renderer
	// Now stamps posts without an updatedAt column. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// LoadFile opens path and loads it with LoadCSV.
func LoadFile(ctx context.Context, path string, opts LoadOptions) ([]Post, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ferrors.NotFoundError("posts source not found").
				WithCause(err).WithContext("path", path).Build()
		}
		return nil, ferrors.FileSystemError("open posts source").
			WithCause(err).WithContext("path", path).Build()
	}
	defer func() { _ = f.Close() }()
	return LoadCSV(ctx, f, opts)
}

// LoadCSV reads posts from r. The first record is the header; rows whose field
// count differs from the header, or whose fields are all empty, are skipped.
func LoadCSV(ctx context.Context, r io.Reader, opts LoadOptions) ([]Post, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []Post{}, nil
	}
	if err != nil {
		return nil, ferrors.ContentError("read posts header").WithCause(err).Build()
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	posts := make([]Post, 0)
	row := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ferrors.ContentError("parse posts source").WithCause(err).Build()
		}
		line, _ := reader.FieldPos(0)
		if len(record) != len(header) {
			logger.Warn("Skipping row with mismatched column count",
				slog.Int("line", line), slog.Int("want", len(header)), logfields.Count(len(record)))
			continue
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if allEmpty(record) {
			continue
		}
		row++

		post, err := mapRecord(header, record, row, now, opts.Renderer)
		if err != nil {
			return nil, ferrors.ContentError("build post").WithCause(err).
				WithContext("line", line).Build()
		}
		posts = append(posts, post)
	}

	logger.Debug("Loaded posts", logfields.Count(len(posts)))
	return posts, nil
}

func allEmpty(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}

func mapRecord(header, record []string, row int, now func() time.Time, renderer Renderer) (Post, error) {
	post := Post{Tags: []string{}, Keywords: []string{}}
	hasID := false
	for i, col := range header {
		value := record[i]
		switch col {
		case ColumnID:
			if id, err := strconv.Atoi(value); err == nil && id != 0 {
				post.ID = id
				hasID = true
			}
		case ColumnTitle:
			post.Title = value
		case ColumnDate:
			post.Date = value
		case ColumnImage:
			post.Image = value
		case ColumnContent:
			post.Content = value
		case ColumnTags:
			post.Tags = SplitTags(value)
		case ColumnReadTime:
			post.ReadTime = value
		case ColumnUpdatedAt:
			post.UpdatedAt = value
		default:
			if post.Extra == nil {
				post.Extra = map[string]string{}
			}
			post.Extra[col] = value
		}
	}
	if !hasID {
		post.ID = row
	}
	if post.UpdatedAt == "" {
		post.UpdatedAt = now().UTC().Format(time.RFC3339)
	}

	// The slug follows the source title even when front matter renames the post.
	post.Slug = slug.Slugify(post.Title)
	post.URL = slug.URL(post.Slug)

	if err := applyFrontMatter(&post); err != nil {
		return Post{}, err
	}
	post.PublishedAt, _ = ParseDate(post.Date)

	if renderer != nil {
		rendered, err := renderer.Render([]byte(post.Content))
		if err != nil {
			return Post{}, err
		}
		post.HTMLContent = rendered
	}
	return post, nil
}

// SplitTags splits a tags column on TagSeparator, dropping empty entries.
func SplitTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, TagSeparator) {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func applyFrontMatter(post *Post) error {
	fields, body, err := frontmatter.Parse([]byte(post.Content))
	if err != nil {
		return err
	}
	post.Content = string(body)
	if len(fields) == 0 {
		return nil
	}
	post.FrontMatter = fields

	if v, ok := fields.String("title"); ok {
		post.Title = v
	}
	if v, ok := fields.String("image"); ok {
		post.Image = v
	}
	if v, ok := fields.String("description"); ok {
		post.Description = v
	}
	if v, ok := fields.First("metaDescription", "meta-description", "description"); ok {
		post.MetaDescription = v
	}
	if tags, ok := fields.List("tags"); ok && len(tags) > 0 {
		post.Tags = tags
	}
	if kw, ok := fields.List("keywords"); ok && len(kw) > 0 {
		post.Keywords = kw
	}
	return nil
}
