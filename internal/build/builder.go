package build

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/eventstore"
	"git.home.luguber.info/inful/blogbuilder/internal/git"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/notify"
	"git.home.luguber.info/inful/blogbuilder/internal/retry"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

// Build triggers.
const (
	TriggerCLI      = "cli"
	TriggerPreview  = "preview"
	TriggerSchedule = "schedule"
	TriggerStartup  = "startup"
)

// Options wires optional collaborators into a Builder. Nil values are
// replaced with no-op implementations.
type Options struct {
	Recorder    metrics.Recorder
	Events      eventstore.Store
	Notifier    notify.Notifier
	Git         *git.Client
	LiveReload  bool // inject the live-reload script into pages
	VerifyLinks bool // run the link check in post_process
	Logger      *slog.Logger
	Now         func() time.Time
}

// Builder runs builds for one configuration. Runs are serialized.
type Builder struct {
	cfg  *config.Config
	opts Options
	mu   sync.Mutex
}

// New creates a Builder.
func New(cfg *config.Config, opts Options) *Builder {
	return &Builder{cfg: cfg, opts: opts.withDefaults(cfg)}
}

func (opts Options) withDefaults(cfg *config.Config) Options {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.NoopNotifier{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Git == nil && cfg.Content.Repository != nil {
		opts.Git = git.NewClient(retry.NewPolicy(retry.ModeExponential, time.Second, 30*time.Second, 2), opts.Logger)
	}
	return opts
}

// Config returns the configuration the builder was created with.
func (b *Builder) Config() *config.Config { return b.cfg }

// buildState is the mutable state shared by the stages of one run.
type buildState struct {
	cfg      *config.Config
	opts     Options
	report   *BuildReport
	recorder metrics.Recorder
	logger   *slog.Logger

	contentRoot string // clone directory when a repository is configured
	posts       *content.Collection
	renderer    *site.Renderer
}

func (bs *buildState) resolveContentPath(p string) string {
	return ContentPath(bs.contentRoot, p)
}

// ContentPath joins a relative content path onto the clone directory root.
// An empty root or an absolute path leaves p unchanged.
func ContentPath(root, p string) string {
	if p == "" || root == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func (b *Builder) pipeline() []stageDef {
	p := &pipeline{}
	p.add(StagePrepareOutput, stagePrepareOutput).
		addIf(b.cfg.Content.Repository != nil, StageSyncContent, stageSyncContent).
		add(StageLoadPosts, stageLoadPosts).
		add(StageRenderPages, stageRenderPages).
		addIf(b.cfg.Site.StaticDir != "", StageCopyStatic, stageCopyStatic).
		add(StageWriteManifest, stageWriteManifest).
		addIf(b.opts.VerifyLinks, StagePostProcess, stagePostProcess)
	return p.defs
}

// Run executes one build. The returned report is always non-nil; err is the
// fatal or canceled stage error, if any.
func (b *Builder) Run(ctx context.Context, trigger string) (*BuildReport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buildID := uuid.NewString()
	logger := b.opts.Logger.With(logfields.BuildID(buildID))
	report := newReport(buildID, trigger, b.opts.Now())
	bs := &buildState{
		cfg:      b.cfg,
		opts:     b.opts,
		report:   report,
		recorder: b.opts.Recorder,
		logger:   logger,
	}

	b.appendEvent(ctx, logger, buildID, eventstore.TypeBuildStarted, report.Start, eventstore.BuildStarted{Trigger: trigger})
	logger.Info("Build started", slog.String("trigger", trigger))

	err := runStages(ctx, bs, b.pipeline())
	report.finish(b.opts.Now())

	if perr := report.Persist(b.cfg.Output.StateDir); perr != nil {
		logger.Warn("Failed to persist build report", logfields.Error(perr))
	}
	b.opts.Recorder.ObserveBuildDuration(report.Duration())
	b.opts.Recorder.IncBuildOutcome(string(report.Outcome))
	b.finishEvents(logger, report, err)

	attrs := []any{logfields.Outcome(string(report.Outcome)), logfields.Duration(report.Duration()),
		slog.Int("posts", report.Posts), slog.Int("pages", report.Pages)}
	if err != nil {
		logger.Error("Build failed", append(attrs, logfields.Error(err))...)
	} else {
		logger.Info("Build finished", attrs...)
	}
	return report, err
}

func (b *Builder) finishEvents(logger *slog.Logger, r *BuildReport, err error) {
	// The run context may already be canceled; history and notifications still go out.
	ctx := context.Background()
	if err != nil {
		b.appendEvent(ctx, logger, r.BuildID, eventstore.TypeBuildFailed, r.End, eventstore.BuildFailed{
			Outcome:    string(r.Outcome),
			Stage:      string(r.FailedStage()),
			Error:      err.Error(),
			DurationMS: r.Duration().Milliseconds(),
		})
	} else {
		b.appendEvent(ctx, logger, r.BuildID, eventstore.TypeBuildCompleted, r.End, eventstore.BuildCompleted{
			Outcome:    string(r.Outcome),
			Posts:      r.Posts,
			Pages:      r.Pages,
			DurationMS: r.Duration().Milliseconds(),
			Warnings:   len(r.Warnings),
		})
	}

	ev := notify.BuildEvent{
		BuildID:    r.BuildID,
		Outcome:    string(r.Outcome),
		Trigger:    r.Trigger,
		Posts:      r.Posts,
		Pages:      r.Pages,
		DurationMS: r.Duration().Milliseconds(),
		OutputDir:  b.cfg.Output.Directory,
		Timestamp:  r.End.UTC(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	if nerr := b.opts.Notifier.Publish(ctx, ev); nerr != nil {
		logger.Warn("Failed to publish build event", logfields.Error(nerr))
	}
}

func (b *Builder) appendEvent(ctx context.Context, logger *slog.Logger, buildID, typ string, at time.Time, payload any) {
	if b.opts.Events == nil {
		return
	}
	e, err := eventstore.NewEvent(buildID, typ, at, payload)
	if err == nil {
		err = b.opts.Events.Append(ctx, e)
	}
	if err != nil {
		logger.Warn("Failed to record build event", slog.String("event_type", typ), logfields.Error(err))
	}
}
