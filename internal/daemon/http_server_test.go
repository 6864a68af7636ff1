package daemon

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
)

func siteFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "index.html"), "home")
	writeFile(t, filepath.Join(root, "about.html"), "about")
	writeFile(t, filepath.Join(root, "blogs.html"), "blogs")
	writeFile(t, filepath.Join(root, "blogs", "1.html"), "page one")
	writeFile(t, filepath.Join(root, "posts", "desk.html"), "desk")
	writeFile(t, filepath.Join(root, "404.html"), "Post Not Found")
	writeFile(t, filepath.Join(root, "styles.css"), "body{}")
	writeFile(t, filepath.Join(root, "docs", "index.html"), "docs index")
	return root
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestSiteHandler(t *testing.T) {
	ts := httptest.NewServer(NewServer(ServerOptions{Root: siteFixture(t), Logger: quiet}, nil).Handler())
	defer ts.Close()

	tests := []struct {
		path string
		code int
		body string
	}{
		{"/", http.StatusOK, "home"},
		{"/about", http.StatusOK, "about"},
		{"/about.html", http.StatusOK, "about"},
		{"/blogs", http.StatusOK, "blogs"},
		{"/blogs/1", http.StatusOK, "page one"},
		{"/posts/desk", http.StatusOK, "desk"},
		{"/posts/desk/", http.StatusOK, "desk"},
		{"/docs", http.StatusOK, "docs index"},
		{"/styles.css", http.StatusOK, "body{}"},
		{"/posts/missing", http.StatusNotFound, "Post Not Found"},
		{"/posts", http.StatusNotFound, "Post Not Found"},
		{"/../etc/passwd", http.StatusNotFound, "Post Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			code, body := get(t, ts.URL+tt.path)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.body, body)
		})
	}

	resp, err := http.Post(ts.URL+"/", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSiteHandlerWithoutNotFoundPage(t *testing.T) {
	ts := httptest.NewServer(NewServer(ServerOptions{Root: t.TempDir(), Logger: quiet}, nil).Handler())
	defer ts.Close()
	code, _ := get(t, ts.URL+"/")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHealth(t *testing.T) {
	status := &buildStatus{}
	ts := httptest.NewServer(NewServer(ServerOptions{Root: t.TempDir(), Logger: quiet}, status).Handler())
	defer ts.Close()

	health := func() (int, HealthResponse) {
		code, body := get(t, ts.URL+"/health")
		var hr HealthResponse
		require.NoError(t, json.Unmarshal([]byte(body), &hr))
		return code, hr
	}

	code, hr := health()
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "starting", hr.Status)
	assert.Nil(t, hr.LastBuild)

	status.record(&build.BuildReport{BuildID: "b1", Outcome: build.OutcomeFailed, End: time.Now()}, assert.AnError)
	code, hr = health()
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", hr.Status)

	status.record(&build.BuildReport{BuildID: "b2", Outcome: build.OutcomeSuccess, Posts: 3, End: time.Now()}, nil)
	code, hr = health()
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", hr.Status)
	require.NotNil(t, hr.LastBuild)
	assert.Equal(t, "b2", hr.LastBuild.BuildID)
	assert.Equal(t, 3, hr.LastBuild.Posts)

	status.record(&build.BuildReport{BuildID: "b3", Outcome: build.OutcomeFailed, End: time.Now()}, assert.AnError)
	code, hr = health()
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", hr.Status)
}

func TestMetricsAndRequestCounting(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	ts := httptest.NewServer(NewServer(ServerOptions{
		Root:     siteFixture(t),
		Metrics:  metrics.HTTPHandler(reg),
		Recorder: rec,
		Logger:   quiet,
	}, nil).Handler())
	defer ts.Close()

	get(t, ts.URL+"/")
	get(t, ts.URL+"/missing")
	code, body := get(t, ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `blogbuilder_http_requests_total{code="200"} 1`)
	assert.Contains(t, body, `blogbuilder_http_requests_total{code="404"} 1`)
}

func TestLiveReloadScriptOnlyWithHub(t *testing.T) {
	without := httptest.NewServer(NewServer(ServerOptions{Root: siteFixture(t), Logger: quiet}, nil).Handler())
	defer without.Close()
	code, _ := get(t, without.URL+"/livereload.js")
	assert.Equal(t, http.StatusNotFound, code)

	with := httptest.NewServer(NewServer(ServerOptions{Root: siteFixture(t), LiveReload: NewLiveReloadHub(quiet), Logger: quiet}, nil).Handler())
	defer with.Close()
	code, body := get(t, with.URL+"/livereload.js")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "EventSource('/livereload')")
}

func TestServerStartStop(t *testing.T) {
	s := NewServer(ServerOptions{Root: siteFixture(t), Logger: quiet}, nil)
	require.NoError(t, s.Start(t.Context()))
	code, body := get(t, "http://"+s.Addr().String()+"/about")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "about", body)
	require.NoError(t, s.Stop(t.Context()))
}
