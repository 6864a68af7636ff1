package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/version"
)

// NotFoundPage is served with status 404 for unknown paths when present.
const NotFoundPage = "404.html"

// ServerOptions configures the site server.
type ServerOptions struct {
	Root        string // exported site directory
	Port        int    // 0 picks a free port
	HealthPath  string
	MetricsPath string
	Metrics     http.Handler // nil disables the metrics endpoint
	LiveReload  *LiveReloadHub
	Recorder    metrics.Recorder
	Logger      *slog.Logger
}

// Server serves the exported site plus health, metrics and live reload.
type Server struct {
	opts    ServerOptions
	status  *buildStatus
	started time.Time
	srv     *http.Server
	addr    net.Addr
}

// NewServer creates a Server. status may be shared with a build loop.
func NewServer(opts ServerOptions, status *buildStatus) *Server {
	if opts.HealthPath == "" {
		opts.HealthPath = "/health"
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if status == nil {
		status = &buildStatus{}
	}
	return &Server{opts: opts, status: status, started: time.Now()}
}

// Handler returns the full routing tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.opts.HealthPath, s.handleHealth)
	if s.opts.Metrics != nil {
		mux.Handle(s.opts.MetricsPath, s.opts.Metrics)
	}
	if s.opts.LiveReload != nil {
		mux.Handle("/livereload", s.opts.LiveReload)
		mux.HandleFunc("/livereload.js", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			_, _ = w.Write([]byte(LiveReloadScript))
		})
	}
	mux.Handle("/", siteHandler(s.opts.Root))
	return s.instrument(mux)
}

// Start binds the port and serves in the background. Bind errors are
// returned directly.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.opts.Port))
	if err != nil {
		return ferrors.DaemonError("bind HTTP port").WithCause(err).WithContext("port", s.opts.Port).Build()
	}
	s.addr = ln.Addr()
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.opts.Logger.Error("HTTP server error", logfields.Error(err))
		}
	}()
	s.opts.Logger.Info("HTTP server listening", slog.String("addr", s.addr.String()), logfields.Path(s.opts.Root))
	return nil
}

// Addr is the bound address once Start returned.
func (s *Server) Addr() net.Addr { return s.addr }

// Stop shuts the server down, closing live reload streams first so
// Shutdown does not wait on them.
func (s *Server) Stop(ctx context.Context) error {
	if s.opts.LiveReload != nil {
		s.opts.LiveReload.Shutdown()
	}
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return ferrors.DaemonError("shutdown HTTP server").WithCause(err).Build()
	}
	return nil
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status    string     `json:"status"`
	Version   string     `json:"version"`
	Uptime    string     `json:"uptime"`
	Building  bool       `json:"building"`
	LastBuild *LastBuild `json:"last_build,omitempty"`
}

// handleHealth reports "ok" once any build succeeded and the latest did not
// fail, "degraded" when the latest failed after an earlier success, and
// "starting" otherwise. Only "starting" after a failure returns 503.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	last, good, running := s.status.snapshot()
	resp := HealthResponse{
		Status:    "ok",
		Version:   version.Version,
		Uptime:    time.Since(s.started).Truncate(time.Second).String(),
		Building:  running,
		LastBuild: last,
	}
	code := http.StatusOK
	switch {
	case !good && last != nil && last.Error != "":
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	case !good:
		resp.Status = "starting"
	case last != nil && last.Error != "":
		resp.Status = "degraded"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// siteHandler serves files from root. Paths without an extension fall back
// to "<path>.html" and "<path>/index.html"; misses get 404.html.
func siteHandler(root string) http.Handler {
	files := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		clean := path.Clean("/" + r.URL.Path)
		rel, ok := resolveSitePath(root, clean)
		if !ok {
			serveNotFound(w, r, root)
			return
		}
		if rel != clean {
			r2 := r.Clone(r.Context())
			r2.URL.Path = rel
			r = r2
		}
		files.ServeHTTP(w, r)
	})
}

// resolveSitePath maps a request path to the site file that answers it.
func resolveSitePath(root, clean string) (string, bool) {
	isFile := func(p string) bool {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(p)))
		return err == nil && !info.IsDir()
	}
	if clean == "/" {
		return "/", isFile("/index.html")
	}
	if isFile(clean) {
		return clean, true
	}
	if path.Ext(clean) == "" || strings.HasSuffix(clean, "/") {
		if isFile(clean + ".html") {
			return clean + ".html", true
		}
		if isFile(clean + "/index.html") {
			return clean + "/", true
		}
	}
	return "", false
}

func serveNotFound(w http.ResponseWriter, r *http.Request, root string) {
	body, err := os.ReadFile(filepath.Join(root, NotFoundPage))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if r.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.code == 0 {
		s.code = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.code == 0 {
		s.code = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// Flush keeps SSE streaming working through the wrapper.
func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.code == 0 {
			rec.code = http.StatusOK
		}
		s.opts.Recorder.IncHTTPRequest(rec.code)
		s.opts.Logger.Debug("HTTP request",
			logfields.Method(r.Method),
			logfields.URL(r.URL.Path),
			logfields.Status(rec.code),
			logfields.Duration(time.Since(start)))
	})
}
