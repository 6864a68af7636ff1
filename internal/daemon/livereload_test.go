package daemon

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readEvent returns the next SSE data payload, skipping comments.
func readEvent(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			return strings.TrimSpace(data)
		}
	}
}

func connect(t *testing.T, ctx context.Context, url string) *bufio.Reader {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return bufio.NewReader(resp.Body)
}

func TestLiveReloadBroadcast(t *testing.T) {
	hub := NewLiveReloadHub(quiet)
	ts := httptest.NewServer(hub)
	defer ts.Close()
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	r := connect(t, ctx, ts.URL)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast("build-1")
	assert.Equal(t, `{"build":"build-1"}`, readEvent(t, r))

	// Repeats of the same build are not sent again.
	hub.Broadcast("build-1")
	hub.Broadcast("build-2")
	assert.Equal(t, `{"build":"build-2"}`, readEvent(t, r))

	// Late joiners get the current build first.
	late := connect(t, ctx, ts.URL)
	assert.Equal(t, `{"build":"build-2"}`, readEvent(t, late))

	cancel()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestLiveReloadShutdown(t *testing.T) {
	hub := NewLiveReloadHub(quiet)
	ts := httptest.NewServer(hub)
	defer ts.Close()

	_ = connect(t, t.Context(), ts.URL)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Shutdown()
	assert.Equal(t, 0, hub.Clients())

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
