package templates

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/state"
)

// Generator renders posts/<slug>.html from one template, regenerating only
// what changed since the last run.
type Generator struct {
	TemplatePath string
	OutputDir    string
	ManifestPath string
	SiteName     string
	State        *state.Store
	// Force regenerates every post.
	Force  bool
	Now    func() time.Time
	Logger *slog.Logger
}

// Result summarises a generator run.
type Result struct {
	Generated []string
	Skipped   []string
	Manifest  content.Manifest
}

// Reason explains why a post is regenerated; "" means it is up to date.
type Reason string

const (
	ReasonForced      Reason = "forced"
	ReasonUpdated     Reason = "updated since last run"
	ReasonChanged     Reason = "content changed"
	ReasonMissingFile Reason = "output missing"
)

// Run generates the posts that need it, writes the manifest and records the run.
// Only the collection's posts are written; posts it excluded for an empty or
// duplicate slug get no page and no manifest entry.
func (g *Generator) Run(ctx context.Context, coll *content.Collection) (Result, error) {
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := g.Now
	if now == nil {
		now = time.Now
	}
	runStart := now().UTC()

	tmplBytes, err := os.ReadFile(g.TemplatePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, ferrors.NotFoundError("post template not found").
				WithCause(err).WithContext("path", g.TemplatePath).Build()
		}
		return Result{}, ferrors.FileSystemError("read post template").
			WithCause(err).WithContext("path", g.TemplatePath).Build()
	}
	tmpl := string(tmplBytes)

	if err := os.MkdirAll(g.OutputDir, 0o755); err != nil {
		return Result{}, ferrors.FileSystemError("create output directory").
			WithCause(err).WithContext("path", g.OutputDir).Build()
	}

	posts := coll.Posts()
	prev := g.State.Load()
	logger.Info("Last run", slog.Time("last_run", prev.LastRun))

	next := state.LastRun{LastRun: runStart, Posts: make(map[string]state.PostRecord, len(posts))}
	var res Result
	for _, p := range posts {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		fp := content.Fingerprint(p)
		target := filepath.Join(g.OutputDir, p.Slug+".html")

		reason := g.reason(p, fp, target, prev)
		if reason == "" {
			logger.Debug("Skipping post, not updated since last run", logfields.Post(p.Title))
			res.Skipped = append(res.Skipped, p.Slug)
			rec, ok := prev.Posts[p.Slug]
			if !ok {
				rec = state.PostRecord{Fingerprint: fp, GeneratedAt: prev.LastRun}
			}
			next.Posts[p.Slug] = rec
			continue
		}

		out := Substitute(tmpl, p, SubstituteOptions{SiteName: g.SiteName})
		if err := state.WriteFileAtomic(target, []byte(out), 0o644); err != nil {
			return res, ferrors.FileSystemError("write post page").WithCause(err).
				WithContext("path", target).Build()
		}
		logger.Info("Generated post", logfields.File(filepath.Base(target)), slog.String("reason", string(reason)))
		res.Generated = append(res.Generated, p.Slug)
		next.Posts[p.Slug] = state.PostRecord{Fingerprint: fp, GeneratedAt: runStart}
	}

	res.Manifest = content.NewManifest(posts, runStart,
		func(p content.Post) string { return "posts/" + p.Slug + ".html" },
		func(p content.Post) time.Time { return next.Posts[p.Slug].GeneratedAt })
	if err := state.WriteJSON(g.ManifestPath, res.Manifest); err != nil {
		return res, ferrors.FileSystemError("write manifest").WithCause(err).
			WithContext("path", g.ManifestPath).Build()
	}

	if err := g.State.Save(next); err != nil {
		return res, err
	}
	logger.Info("Legacy generation complete",
		slog.Int("generated", len(res.Generated)), slog.Int("skipped", len(res.Skipped)))
	return res, nil
}

func (g *Generator) reason(p content.Post, fingerprint, target string, prev state.LastRun) Reason {
	if g.Force {
		return ReasonForced
	}
	if updated, ok := p.Updated(); ok && updated.After(prev.LastRun) {
		return ReasonUpdated
	}
	if stored := prev.Fingerprint(p.Slug); stored != "" && stored != fingerprint {
		return ReasonChanged
	}
	if _, err := os.Stat(target); err != nil {
		return ReasonMissingFile
	}
	return ""
}
