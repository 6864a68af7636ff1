package daemon

import (
	"context"
	"sync"
	"time"
)

// debouncer calls fire once no trigger arrived for the quiet window.
type debouncer struct {
	mu    sync.Mutex
	quiet time.Duration
	timer *time.Timer
	fire  func()
}

func newDebouncer(quiet time.Duration, fire func()) *debouncer {
	return &debouncer{quiet: quiet, fire: fire}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, d.fire)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// rebuildLoop runs at most one rebuild at a time. Requests arriving during
// a rebuild collapse into a single follow-up run.
type rebuildLoop struct {
	requests chan struct{}
	run      func(context.Context)
}

func newRebuildLoop(run func(context.Context)) *rebuildLoop {
	return &rebuildLoop{requests: make(chan struct{}, 1), run: run}
}

// request queues a rebuild unless one is already pending.
func (l *rebuildLoop) request() {
	select {
	case l.requests <- struct{}{}:
	default:
	}
}

// serve processes requests until ctx is done.
func (l *rebuildLoop) serve(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.requests:
			l.run(ctx)
		}
	}
}
