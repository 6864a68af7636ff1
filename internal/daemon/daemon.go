package daemon

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/eventstore"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/notify"
	"git.home.luguber.info/inful/blogbuilder/internal/version"
)

// Status is the lifecycle state of a Daemon.
type Status int32

const (
	StatusStopped Status = iota
	StatusStarting
	StatusRunning
	StatusStopping
)

func (s Status) String() string {
	switch s {
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusStopping:
		return "stopping"
	default:
		return "stopped"
	}
}

// Options overrides collaborators; zero values are built from the config.
type Options struct {
	Port     int // overrides daemon.http.port when non-zero
	Events   eventstore.Store
	Notifier notify.Notifier
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// Daemon rebuilds the site on a schedule and serves it.
type Daemon struct {
	cfg      *config.Config
	builder  *build.Builder
	recorder metrics.Recorder
	events   eventstore.Store
	notifier notify.Notifier
	status   *buildStatus
	server   *Server
	state    atomic.Int32
	logger   *slog.Logger

	ownEvents   bool
	ownNotifier bool
}

// New wires the build history store, notifier, metrics and builder.
func New(cfg *config.Config, opts Options) (*Daemon, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	d := &Daemon{cfg: cfg, status: &buildStatus{}, logger: logger}

	d.events = opts.Events
	if d.events == nil {
		store, err := eventstore.NewSQLiteStore(cfg.Daemon.Storage.EventsDB)
		if err != nil {
			return nil, err
		}
		d.events, d.ownEvents = store, true
	}

	d.notifier = opts.Notifier
	if d.notifier == nil {
		d.notifier = notify.NoopNotifier{}
		if n := cfg.Notify.NATS; n != nil && n.URL != "" {
			nn, err := notify.NewNATSNotifier(n.URL, n.Subject, logger)
			if err != nil {
				// Builds still run without notifications.
				logger.Warn("NATS notifier unavailable", logfields.URL(n.URL), logfields.Error(err))
			} else {
				d.notifier, d.ownNotifier = nn, true
			}
		}
	}

	var metricsHandler http.Handler
	d.recorder = metrics.NoopRecorder{}
	if cfg.Monitoring.Metrics.Enabled {
		reg := opts.Registry
		if reg == nil {
			reg = prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		}
		d.recorder = metrics.NewPrometheusRecorder(reg)
		metricsHandler = metrics.HTTPHandler(reg)
	}

	d.builder = build.New(cfg, build.Options{
		Recorder: d.recorder,
		Events:   d.events,
		Notifier: d.notifier,
		Logger:   logger,
	})

	port := cfg.Daemon.HTTP.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	d.server = NewServer(ServerOptions{
		Root:        cfg.Output.Directory,
		Port:        port,
		HealthPath:  cfg.Monitoring.Health.Path,
		MetricsPath: cfg.Monitoring.Metrics.Path,
		Metrics:     metricsHandler,
		Recorder:    d.recorder,
		Logger:      logger,
	}, d.status)
	return d, nil
}

// Status returns the lifecycle state.
func (d *Daemon) Status() Status { return Status(d.state.Load()) }

// Server exposes the HTTP server, mainly for its bound address.
func (d *Daemon) Server() *Server { return d.server }

// Run serves the site, builds once at startup and then on schedule until ctx
// is canceled. Resources owned by the daemon are released on return.
func (d *Daemon) Run(ctx context.Context) error {
	if !d.state.CompareAndSwap(int32(StatusStopped), int32(StatusStarting)) {
		return ferrors.DaemonError("daemon already running").WithContext("status", d.Status().String()).Build()
	}
	defer d.state.Store(int32(StatusStopped))
	defer d.close()

	d.logger.Info("Starting blogbuilder daemon",
		slog.String("version", version.Version),
		logfields.Path(d.cfg.Output.Directory),
		slog.String("events_db", d.cfg.Daemon.Storage.EventsDB))

	if err := d.server.Start(ctx); err != nil {
		return err
	}
	defer stopServer(d.server, d.cfg.Daemon.HTTP.ShutdownTimeout, d.logger)

	sched, err := newScheduler(d.cfg.Daemon.Schedule, func() {
		_, _ = runBuild(ctx, d.builder, build.TriggerSchedule, d.status, d.logger)
	}, d.logger)
	if err != nil {
		return err
	}

	d.state.Store(int32(StatusRunning))
	_, _ = runBuild(ctx, d.builder, build.TriggerStartup, d.status, d.logger)

	sched.Start()
	<-ctx.Done()

	d.state.Store(int32(StatusStopping))
	d.logger.Info("Daemon stopping")
	if err := sched.Shutdown(); err != nil {
		d.logger.Warn("Scheduler shutdown", logfields.Error(err))
	}
	return nil
}

func (d *Daemon) close() {
	if d.ownNotifier {
		if err := d.notifier.Close(); err != nil {
			d.logger.Warn("Close notifier", logfields.Error(err))
		}
	}
	if d.ownEvents {
		if err := d.events.Close(); err != nil {
			d.logger.Warn("Close event store", logfields.Error(err))
		}
	}
}
