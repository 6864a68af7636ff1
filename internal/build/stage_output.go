package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/linkverify"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

// stagePrepareOutput empties the output directory when configured to and
// makes sure the output and state directories exist.
func stagePrepareOutput(_ context.Context, bs *buildState) error {
	out := bs.cfg.Output.Directory
	if bs.cfg.Output.Clean {
		if err := cleanDir(out); err != nil {
			return newFatal(StagePrepareOutput, err)
		}
	}
	for _, dir := range []string{out, bs.cfg.Output.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return newFatal(StagePrepareOutput, ferrors.FileSystemError("create directory").
				WithCause(err).WithContext("path", dir).Build())
		}
	}
	return nil
}

// cleanDir removes the contents of dir but keeps dir itself so a server
// rooted there keeps working.
func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return ferrors.FileSystemError("read output directory").WithCause(err).WithContext("path", dir).Build()
	}
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		if err := os.RemoveAll(p); err != nil {
			return ferrors.FileSystemError("clean output directory").WithCause(err).WithContext("path", p).Build()
		}
	}
	return nil
}

// stageCopyStatic copies the static directory verbatim into the output.
// A configured but missing directory is a warning.
func stageCopyStatic(ctx context.Context, bs *buildState) error {
	src := bs.cfg.Site.StaticDir
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		return newWarning(StageCopyStatic, ferrors.NotFoundError("static directory not found").
			WithContext("path", src).Build())
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := site.CopyDir(src, bs.cfg.Output.Directory)
	if err != nil {
		return newFatal(StageCopyStatic, ferrors.FileSystemError("copy static files").
			WithCause(err).WithContext("path", src).Build())
	}
	bs.report.StaticFiles = n
	bs.logger.Debug("Copied static files", logfields.Count(n), logfields.Path(src))
	return nil
}

// stageWriteManifest writes blogs.json.
func stageWriteManifest(_ context.Context, bs *buildState) error {
	if _, err := bs.renderer.WriteManifest(bs.posts); err != nil {
		return newFatal(StageWriteManifest, err)
	}
	bs.report.Pages++
	bs.recorder.AddPagesRendered(1)
	return nil
}

// stagePostProcess verifies internal links of the exported site.
func stagePostProcess(ctx context.Context, bs *buildState) error {
	rep, err := linkverify.NewChecker(bs.cfg.Output.Directory, bs.logger).Check(ctx)
	if err != nil {
		return newWarning(StagePostProcess, err)
	}
	bs.report.BrokenLinks = rep.Broken
	if !rep.OK() {
		for _, b := range rep.Broken {
			bs.logger.Warn("Broken internal link", logfields.Path(b.Source), logfields.URL(b.URL))
		}
		return newWarning(StagePostProcess, ferrors.ValidationError(
			fmt.Sprintf("%d broken internal links", len(rep.Broken))).Build())
	}
	return nil
}
