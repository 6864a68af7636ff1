package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/git"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
)

// stageSyncContent clones or pulls the content repository. When a previous
// checkout exists, a failed sync degrades to a warning and builds from it.
func stageSyncContent(ctx context.Context, bs *buildState) error {
	repo := git.FromConfig(bs.cfg.Content.Repository)
	bs.contentRoot = repo.Path

	res, err := bs.opts.Git.Sync(ctx, repo)
	bs.recorder.ObserveGitSync(res.Duration, err == nil)
	if err != nil {
		if ctx.Err() != nil {
			return newCanceled(StageSyncContent, err)
		}
		if hasCheckout(repo.Path) {
			return newWarning(StageSyncContent, err)
		}
		return newFatal(StageSyncContent, err)
	}
	bs.report.Commit = res.Commit
	logSynced(bs.logger, repo, res)
	return nil
}

// SyncContent brings the configured content repository up to date outside a
// build run and returns the checkout directory, or "" when no repository is
// configured. A failed sync over an existing checkout is logged and the stale
// checkout is used, matching the sync_content stage.
func SyncContent(ctx context.Context, cfg *config.Config, opts Options) (string, error) {
	if cfg.Content.Repository == nil {
		return "", nil
	}
	opts = opts.withDefaults(cfg)
	repo := git.FromConfig(cfg.Content.Repository)

	res, err := opts.Git.Sync(ctx, repo)
	opts.Recorder.ObserveGitSync(res.Duration, err == nil)
	if err != nil {
		if ctx.Err() == nil && hasCheckout(repo.Path) {
			opts.Logger.Warn("Content repository sync failed, using existing checkout",
				logfields.Repository(repo.URL), logfields.Path(repo.Path), logfields.Error(err))
			return repo.Path, nil
		}
		return "", err
	}
	logSynced(opts.Logger, repo, res)
	return repo.Path, nil
}

// LoadContent loads posts the way a build does: the content repository is
// synced first and the CSV path resolved inside the checkout.
func LoadContent(ctx context.Context, cfg *config.Config, opts Options) (*content.Collection, error) {
	opts = opts.withDefaults(cfg)
	root, err := SyncContent(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	return LoadPosts(ctx, cfg, ContentPath(root, cfg.Content.CSVPath), opts)
}

func hasCheckout(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

func logSynced(logger *slog.Logger, repo git.Repository, res git.SyncResult) {
	logger.Info("Content repository synced",
		logfields.Repository(repo.URL),
		logfields.Branch(repo.Branch),
		logfields.Duration(res.Duration))
}

// MarkdownOptions maps configuration toggles onto renderer options.
func MarkdownOptions(mc config.MarkdownConfig) markdown.Options {
	return markdown.Options{
		HardWraps:   config.Enabled(mc.HardWraps),
		Typographer: config.Enabled(mc.Typographer),
		Decorate:    config.Enabled(mc.Decorate),
	}
}

// LoadPosts reads the configured post source into a collection. csvPath is
// used as given; callers resolve it against a content checkout first.
func LoadPosts(ctx context.Context, cfg *config.Config, csvPath string, opts Options) (*content.Collection, error) {
	posts, err := content.LoadFile(ctx, csvPath, content.LoadOptions{
		Renderer: markdown.NewRenderer(MarkdownOptions(cfg.Content.Markdown)),
		Now:      opts.Now,
		Logger:   opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return content.NewCollection(posts, opts.Logger), nil
}

// stageLoadPosts loads and renders every post. Excluded posts are a warning.
func stageLoadPosts(ctx context.Context, bs *buildState) error {
	path := bs.resolveContentPath(bs.cfg.Content.CSVPath)
	coll, err := LoadPosts(ctx, bs.cfg, path, Options{Now: bs.opts.Now, Logger: bs.logger})
	if err != nil {
		return err
	}
	bs.posts = coll
	bs.report.Posts = coll.Len()
	bs.report.ExcludedPosts = len(coll.Excluded())
	bs.recorder.SetPostsLoaded(coll.Len())
	bs.logger.Info("Loaded posts", logfields.Count(coll.Len()), logfields.Path(path))

	if n := len(coll.Excluded()); n > 0 {
		return newWarning(StageLoadPosts, ferrors.ContentError(
			fmt.Sprintf("%d posts excluded for empty or duplicate slugs", n)).Build())
	}
	return nil
}
