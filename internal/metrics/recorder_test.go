package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("load_posts", time.Second)
	r.IncStageResult("load_posts", ResultSuccess)
	r.ObserveBuildDuration(time.Second)
	r.IncBuildOutcome("success")
	r.SetPostsLoaded(3)
	r.AddPagesRendered(9)
	r.ObserveGitSync(time.Second, true)
	r.IncHTTPRequest(200)
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncStageResult("render_pages", ResultSuccess)
	pr.IncStageResult("render_pages", ResultSuccess)
	pr.IncBuildOutcome("failed")
	pr.SetPostsLoaded(5)
	pr.AddPagesRendered(4)
	pr.AddPagesRendered(6)
	pr.IncHTTPRequest(404)
	pr.ObserveStageDuration("render_pages", 10*time.Millisecond)
	pr.ObserveGitSync(time.Second, false)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.stageResults.WithLabelValues("render_pages", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.buildOutcome.WithLabelValues("failed")), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(pr.postsLoaded), 0)
	assert.InDelta(t, 10, testutil.ToFloat64(pr.pagesRendered), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.httpRequests.WithLabelValues("404")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(pr.gitSync))

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "blogbuilder_pages_rendered_total"))
	assert.Contains(t, body, `blogbuilder_stage_results_total{result="success",stage="render_pages"} 2`)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncBuildOutcome("success")
	pr.ObserveBuildDuration(time.Second)
	pr.IncHTTPRequest(500)
}
