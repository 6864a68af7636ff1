package build

import (
	"context"
	"errors"
	"html/template"
	"os"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
	"git.home.luguber.info/inful/blogbuilder/internal/version"
)

// SiteInfo maps the site section of the configuration onto render data.
func SiteInfo(sc config.SiteConfig) site.Info {
	return site.Info{
		Name:             sc.Name,
		Title:            sc.Title,
		Description:      sc.Description,
		Keywords:         sc.Keywords,
		BaseURL:          sc.BaseURL,
		Author:           sc.Author,
		HeroTitle:        sc.HeroTitle,
		HeroSubtitle:     sc.HeroSubtitle,
		PlaceholderImage: sc.PlaceholderImage,
	}
}

// stageRenderPages renders home, listing, post, about and 404 pages.
func stageRenderPages(ctx context.Context, bs *buildState) error {
	layouts, err := site.LoadLayouts(bs.cfg.Site.LayoutsDir)
	if err != nil {
		return newFatal(StageRenderPages, ferrors.RenderError("load layouts").
			WithCause(err).WithContext("path", bs.cfg.Site.LayoutsDir).Build())
	}

	about, aboutErr := bs.aboutHTML()

	bs.renderer = site.NewRenderer(layouts, site.Options{
		Site:         SiteInfo(bs.cfg.Site),
		OutputDir:    bs.cfg.Output.Directory,
		PostsPerPage: bs.cfg.Pagination.PostsPerPage,
		HomeLatest:   bs.cfg.Pagination.HomeLatest,
		Related:      bs.cfg.Pagination.Related,
		AboutHTML:    about,
		LiveReload:   bs.opts.LiveReload,
		Generator:    "blogbuilder " + version.Version,
		Now:          bs.opts.Now,
		Logger:       bs.logger,
	})
	res, err := bs.renderer.Render(ctx, bs.posts)
	bs.report.Pages += len(res.Pages)
	bs.recorder.AddPagesRendered(len(res.Pages))
	if err != nil {
		if ctx.Err() != nil {
			return newCanceled(StageRenderPages, err)
		}
		if ferrors.IsClassified(err) {
			return newFatal(StageRenderPages, err)
		}
		return newFatal(StageRenderPages, ferrors.RenderError("render pages").WithCause(err).Build())
	}
	if aboutErr != nil {
		return newWarning(StageRenderPages, aboutErr)
	}
	return nil
}

// aboutHTML renders the configured about file. An empty result selects the
// built-in text; a missing or unreadable file does too, with an error.
func (bs *buildState) aboutHTML() (template.HTML, error) {
	path := bs.resolveContentPath(bs.cfg.Site.AboutFile)
	if path == "" {
		return "", nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		b := ferrors.FileSystemError("read about file")
		if errors.Is(err, os.ErrNotExist) {
			b = ferrors.NotFoundError("about file not found")
		}
		return "", b.WithCause(err).WithContext("path", path).Build()
	}
	_, body, err := frontmatter.Parse(src)
	if err != nil {
		return "", ferrors.ContentError("parse about file").WithCause(err).WithContext("path", path).Build()
	}
	html, err := markdown.NewRenderer(MarkdownOptions(bs.cfg.Content.Markdown)).Render(body)
	if err != nil {
		return "", ferrors.ContentError("render about file").WithCause(err).WithContext("path", path).Build()
	}
	bs.logger.Debug("Rendered about page", logfields.Path(path))
	// #nosec G203 -- the about file is trusted site content.
	return template.HTML(html), nil
}
