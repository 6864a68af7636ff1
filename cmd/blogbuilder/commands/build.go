package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/workspace"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" help:"Override output.directory" type:"path"`
	Clean       bool   `help:"Empty the output directory first"`
	VerifyLinks bool   `name:"verify-links" help:"Check internal links after the build"`
	Fresh       bool   `help:"Clone the content repository into a temporary workspace"`
	NoHistory   bool   `name:"no-history" help:"Do not record the build in the history database"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.Clean {
		cfg.Output.Clean = true
	}

	ws, err := prepareWorkspace(cfg, b.Fresh, g.Logger)
	if err != nil {
		return err
	}
	if ws != nil {
		defer func() {
			if err := ws.Cleanup(); err != nil {
				g.Logger.Warn("Failed to clean up workspace", logfields.Error(err))
			}
		}()
	}

	opts := build.Options{VerifyLinks: b.VerifyLinks, Logger: g.Logger}
	if !b.NoHistory {
		if store := openHistory(cfg, g.Logger); store != nil {
			defer func() { _ = store.Close() }()
			opts.Events = store
		}
	}

	ctx, cancel := signalContext()
	defer cancel()
	report, err := build.New(cfg, opts).Run(ctx, build.TriggerCLI)
	if report != nil {
		fmt.Println(report.Summary())
		for _, bl := range report.BrokenLinks {
			fmt.Printf("broken link: %s -> %s\n", bl.Source, bl.URL)
		}
	}
	return err
}

// prepareWorkspace creates the clone directory when a content repository is
// configured. fresh selects a throwaway directory that Cleanup removes.
func prepareWorkspace(cfg *config.Config, fresh bool, logger *slog.Logger) (*workspace.Manager, error) {
	repo := cfg.Content.Repository
	if repo == nil {
		return nil, nil
	}
	m := workspace.NewPersistentManager(repo.WorkspaceDir, logger)
	if fresh {
		m = workspace.NewManager(os.TempDir(), logger)
	}
	dir, err := m.Create()
	if err != nil {
		return nil, err
	}
	repo.WorkspaceDir = dir
	return m, nil
}

// loadContent loads the post collection the way a build sees it: the content
// repository, when configured, is synced into its workspace first.
func loadContent(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*content.Collection, error) {
	if _, err := prepareWorkspace(cfg, false, logger); err != nil {
		return nil, err
	}
	return build.LoadContent(ctx, cfg, build.Options{Logger: logger})
}
