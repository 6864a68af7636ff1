package daemon

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
)

// PreviewOptions configures RunPreview.
type PreviewOptions struct {
	Port     int           // overrides preview.port when non-zero
	Debounce time.Duration // overrides preview.debounce when non-zero
	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// RunPreview builds once, serves the output and rebuilds on source changes
// until ctx is canceled. The builder should have live reload enabled.
func RunPreview(ctx context.Context, b *build.Builder, opts PreviewOptions) error {
	cfg := b.Config()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	port := cfg.Preview.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	quiet := cfg.Preview.Debounce
	if opts.Debounce > 0 {
		quiet = opts.Debounce
	}

	status := &buildStatus{}
	hub := NewLiveReloadHub(logger)
	runBuild(ctx, b, build.TriggerPreview, status, logger)

	server := NewServer(ServerOptions{
		Root:       cfg.Output.Directory,
		Port:       port,
		HealthPath: cfg.Monitoring.Health.Path,
		LiveReload: hub,
		Recorder:   opts.Recorder,
		Logger:     logger,
	}, status)
	if err := server.Start(ctx); err != nil {
		return err
	}
	defer stopServer(server, cfg.Daemon.HTTP.ShutdownTimeout, logger)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return ferrors.FileSystemError("create file watcher").WithCause(err).Build()
	}
	defer func() { _ = watcher.Close() }()

	ws := previewWatchSet(cfg)
	missing, err := ws.register(watcher)
	if err != nil {
		return err
	}
	for _, p := range missing {
		logger.Warn("Watch path not found", logfields.Path(p))
	}

	loop := newRebuildLoop(func(ctx context.Context) {
		report, err := runBuild(ctx, b, build.TriggerPreview, status, logger)
		if err == nil && report != nil {
			hub.Broadcast(report.BuildID)
		}
	})
	go loop.serve(ctx)
	deb := newDebouncer(quiet, loop.request)
	defer deb.stop()

	logger.Info("Preview ready", slog.Int("port", port), logfields.Duration(quiet))
	for {
		select {
		case <-ctx.Done():
			logger.Info("Preview stopping")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				ws.handleCreate(watcher, ev.Name)
			}
			if ev.Op == fsnotify.Chmod || !ws.relevant(ev.Name) {
				continue
			}
			logger.Debug("Source changed", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			deb.trigger()
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error", logfields.Error(werr))
		}
	}
}

// previewWatchSet lists what a preview rebuild depends on.
func previewWatchSet(cfg *config.Config) *watchSet {
	ws := newWatchSet()
	ws.addFile(contentPath(cfg, cfg.Content.CSVPath))
	ws.addFile(contentPath(cfg, cfg.Site.AboutFile))
	ws.addTree(cfg.Site.LayoutsDir)
	ws.addTree(cfg.Site.StaticDir)
	ws.addIgnore(cfg.Output.Directory)
	ws.addIgnore(cfg.Output.StateDir)
	return ws
}

// contentPath resolves a content path against the repository checkout the
// same way builds do.
func contentPath(cfg *config.Config, p string) string {
	r := cfg.Content.Repository
	if p == "" || r == nil || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(r.WorkspaceDir, p)
}

// runBuild runs one build and records it for the health endpoint. Failures
// are logged, not returned to the loop.
func runBuild(ctx context.Context, b *build.Builder, trigger string, status *buildStatus, logger *slog.Logger) (*build.BuildReport, error) {
	status.start()
	report, err := b.Run(ctx, trigger)
	status.record(report, err)
	if err != nil {
		logger.Error("Build failed", slog.String("trigger", trigger), logfields.Error(err))
	}
	return report, err
}

func stopServer(s *Server, timeout time.Duration, logger *slog.Logger) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		logger.Warn("HTTP server shutdown", logfields.Error(err))
	}
}
