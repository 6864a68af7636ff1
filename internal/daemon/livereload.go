package daemon

import (
	"bufio"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const heartbeatInterval = 30 * time.Second

// LiveReloadHub fans build IDs out to browsers connected to /livereload.
type LiveReloadHub struct {
	mu      sync.RWMutex
	nextID  int
	clients map[int]*lrClient
	closed  bool
	last    string
	logger  *slog.Logger
}

type lrClient struct {
	ch   chan string
	done chan struct{}
}

// NewLiveReloadHub creates an empty hub.
func NewLiveReloadHub(logger *slog.Logger) *LiveReloadHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveReloadHub{clients: map[int]*lrClient{}, logger: logger}
}

// Clients returns the number of connected browsers.
func (h *LiveReloadHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP implements the SSE endpoint. The first data event carries the
// current build ID, so a page loaded mid-build reloads once it finishes.
func (h *LiveReloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		http.Error(w, "livereload shutting down", http.StatusServiceUnavailable)
		return
	}
	id := h.nextID
	h.nextID++
	c := &lrClient{ch: make(chan string, 8), done: make(chan struct{})}
	h.clients[id] = c
	current := h.last
	h.mu.Unlock()
	defer h.remove(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	bw := bufio.NewWriter(w)
	send := func(s string) bool {
		if _, err := bw.WriteString(s); err != nil {
			return false
		}
		if err := bw.Flush(); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(": connected\n\n") {
		return
	}
	if current != "" && !send(dataEvent(current)) {
		return
	}

	hb := time.NewTicker(heartbeatInterval)
	defer hb.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-c.done:
			return
		case <-hb.C:
			if !send(": ping\n\n") {
				return
			}
		case build := <-c.ch:
			if !send(dataEvent(build)) {
				h.logger.Debug("livereload write failed")
				return
			}
		}
	}
}

func dataEvent(build string) string {
	return fmt.Sprintf("data: {\"build\":%q}\n\n", build)
}

func (h *LiveReloadHub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.done)
	}
}

// Broadcast tells every client that build finished. Clients whose buffers
// are full are dropped; they reconnect on their own.
func (h *LiveReloadHub) Broadcast(build string) {
	h.mu.Lock()
	if h.closed || build == "" || build == h.last {
		h.mu.Unlock()
		return
	}
	h.last = build
	snapshot := make(map[int]*lrClient, len(h.clients))
	for id, c := range h.clients {
		snapshot[id] = c
	}
	h.mu.Unlock()

	dropped := 0
	for id, c := range snapshot {
		select {
		case c.ch <- build:
		default:
			dropped++
			h.remove(id)
		}
	}
	h.logger.Debug("Live reload broadcast", slog.String("build", build),
		slog.Int("clients", len(snapshot)), slog.Int("dropped", dropped))
}

// Shutdown disconnects all clients and rejects new ones.
func (h *LiveReloadHub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.done)
	}
}

// LiveReloadScript is served at /livereload.js. It ignores the first event
// and reloads the page on any later build ID.
const LiveReloadScript = `(() => {
  if (window.__BLOGBUILDER_LR__) return;
  window.__BLOGBUILDER_LR__ = true;
  let current = null;
  function connect() {
    const es = new EventSource('/livereload');
    es.onmessage = (e) => {
      try {
        const p = JSON.parse(e.data);
        if (current === null) { current = p.build; return; }
        if (p.build && p.build !== current) { location.reload(); }
      } catch (_) {}
    };
    es.onerror = () => { es.close(); setTimeout(connect, 2000); };
  }
  connect();
})();
`
