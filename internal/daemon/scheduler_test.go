package daemon

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

func TestSchedulerRunsRebuilds(t *testing.T) {
	var runs atomic.Int32
	s, err := newScheduler(config.ScheduleConfig{Interval: 20 * time.Millisecond}, func() { runs.Add(1) }, quiet)
	require.NoError(t, err)
	s.Start()
	defer func() { _ = s.Shutdown() }()

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	require.Len(t, s.Jobs(), 1)
	assert.Equal(t, rebuildJobName, s.Jobs()[0].Name())
}

func TestSchedulerRejectsBadCron(t *testing.T) {
	_, err := newScheduler(config.ScheduleConfig{Cron: "every tuesday"}, func() {}, quiet)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestSchedulerAcceptsCron(t *testing.T) {
	s, err := newScheduler(config.ScheduleConfig{Cron: "*/5 * * * *"}, func() {}, quiet)
	require.NoError(t, err)
	require.NoError(t, s.Shutdown())
}
