// Package commands implements the blogbuilder command line.
package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/eventstore"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// DefaultConfigPath is used when --config is not given.
const DefaultConfigPath = "blogbuilder.yaml"

// Global carries state shared by all commands.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command tree.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"blogbuilder.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable debug logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Build the site into the output directory"`
	Generate GenerateCmd `cmd:"" help:"Regenerate post pages from the legacy single template"`
	List     ListCmd     `cmd:"" help:"List loaded posts and their slugs"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration, post source and about page"`
	Preview  PreviewCmd  `cmd:"" help:"Build, serve and rebuild on changes with live reload"`
	Daemon   DaemonCmd   `cmd:"" help:"Serve the site and rebuild on a schedule"`
	Check    CheckCmd    `cmd:"" help:"Verify internal links of the built site"`
	History  HistoryCmd  `cmd:"" help:"Show recent builds"`
}

// AfterApply installs a stderr logger before any command runs. Commands
// that load a configuration replace it with the configured handler.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig reads the configuration, falling back to defaults when the
// file does not exist, and switches logging to its settings.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(c.Config)
	if err != nil {
		return nil, err
	}
	g.Logger = slog.New(cfg.Logging.NewHandler(os.Stderr, c.Verbose))
	slog.SetDefault(g.Logger)
	g.Logger.Debug("Configuration loaded", logfields.Path(c.Config))
	return cfg, nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openHistory opens the build history store. Failure only loses history.
func openHistory(cfg *config.Config, logger *slog.Logger) eventstore.Store {
	store, err := eventstore.NewSQLiteStore(cfg.Daemon.Storage.EventsDB)
	if err != nil {
		logger.Warn("Build history unavailable", logfields.Path(cfg.Daemon.Storage.EventsDB), logfields.Error(err))
		return nil
	}
	return store
}
