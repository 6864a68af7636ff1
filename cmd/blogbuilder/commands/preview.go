package commands

import (
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/daemon"
)

// PreviewCmd implements the 'preview' command.
type PreviewCmd struct {
	Port         int           `short:"p" help:"Override preview.port"`
	Debounce     time.Duration `help:"Override preview.debounce"`
	NoLiveReload bool          `name:"no-live-reload" help:"Do not inject the live reload script"`
}

func (p *PreviewCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	ws, err := prepareWorkspace(cfg, false, g.Logger)
	if err != nil {
		return err
	}
	if ws != nil {
		defer func() { _ = ws.Cleanup() }()
	}

	b := build.New(cfg, build.Options{
		LiveReload: config.Enabled(cfg.Preview.LiveReload) && !p.NoLiveReload,
		Logger:     g.Logger,
	})
	ctx, cancel := signalContext()
	defer cancel()
	return daemon.RunPreview(ctx, b, daemon.PreviewOptions{Port: p.Port, Debounce: p.Debounce, Logger: g.Logger})
}
