package commands

import (
	"git.home.luguber.info/inful/blogbuilder/internal/daemon"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	Port int `short:"p" help:"Override daemon.http.port"`
}

func (d *DaemonCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if _, err := prepareWorkspace(cfg, false, g.Logger); err != nil {
		return err
	}
	dmn, err := daemon.New(cfg, daemon.Options{Port: d.Port, Logger: g.Logger})
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	return dmn.Run(ctx)
}
