package daemon

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerCoalescesBursts(t *testing.T) {
	var fired atomic.Int32
	d := newDebouncer(40*time.Millisecond, func() { fired.Add(1) })
	for range 5 {
		d.trigger()
		time.Sleep(5 * time.Millisecond)
	}
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())

	d.trigger()
	d.stop()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestRebuildLoopKeepsOnePending(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 10)
	var mu sync.Mutex
	runs := 0

	loop := newRebuildLoop(func(context.Context) {
		mu.Lock()
		runs++
		n := runs
		mu.Unlock()
		started <- struct{}{}
		if n == 1 {
			<-release
		}
	})
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go loop.serve(ctx)

	loop.request()
	<-started
	// While the first run blocks, any number of requests collapse into one.
	for range 5 {
		loop.request()
	}
	close(release)
	<-started

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, runs)
}
