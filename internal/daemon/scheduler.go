package daemon

import (
	"log/slog"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

const rebuildJobName = "scheduled-rebuild"

// jobDefinition picks a cron job when an expression is set, otherwise a
// fixed interval.
func jobDefinition(sc config.ScheduleConfig) gocron.JobDefinition {
	if sc.Cron != "" {
		return gocron.CronJob(sc.Cron, false)
	}
	return gocron.DurationJob(sc.Interval)
}

// newScheduler registers the rebuild job on a stopped scheduler. Runs never
// overlap; a tick that lands during a build is rescheduled.
func newScheduler(sc config.ScheduleConfig, rebuild func(), logger *slog.Logger) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, ferrors.DaemonError("create scheduler").WithCause(err).Build()
	}
	_, err = s.NewJob(
		jobDefinition(sc),
		gocron.NewTask(func() {
			logger.Debug("Scheduled rebuild", logfields.Job(rebuildJobName))
			rebuild()
		}),
		gocron.WithName(rebuildJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, ferrors.ConfigError("invalid rebuild schedule").
			WithCause(err).
			WithContext("cron", sc.Cron).
			WithContext("interval", sc.Interval.String()).
			Build()
	}
	logger.Info("Rebuild scheduled", slog.String("cron", sc.Cron), slog.Duration("interval", sc.Interval))
	return s, nil
}
