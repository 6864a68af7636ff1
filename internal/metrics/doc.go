// Package metrics records build and serving metrics behind a small Recorder
// interface. NoopRecorder is the default; PrometheusRecorder exports the same
// hooks for scraping on the daemon's /metrics endpoint.
package metrics
