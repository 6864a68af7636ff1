// Package logfields holds the canonical slog attribute keys used by blogbuilder.
package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPost       = "post"
	KeySlug       = "slug"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyPage       = "page"
	KeyCount      = "count"
	KeyOutcome    = "outcome"
	KeyRepo       = "repository"
	KeyBranch     = "branch"
	KeyJob        = "job"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyURL        = "url"
	KeySubject    = "subject"
	KeyError      = "error"
)

func BuildID(id string) slog.Attr          { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr          { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr      { return slog.Float64(KeyDurationMS, ms) }
func Post(title string) slog.Attr          { return slog.String(KeyPost, title) }
func Slug(s string) slog.Attr              { return slog.String(KeySlug, s) }
func Path(p string) slog.Attr              { return slog.String(KeyPath, p) }
func File(f string) slog.Attr              { return slog.String(KeyFile, f) }
func Page(n int) slog.Attr                 { return slog.Int(KeyPage, n) }
func Count(n int) slog.Attr                { return slog.Int(KeyCount, n) }
func Outcome(o string) slog.Attr           { return slog.String(KeyOutcome, o) }
func Repository(r string) slog.Attr        { return slog.String(KeyRepo, r) }
func Branch(b string) slog.Attr            { return slog.String(KeyBranch, b) }
func Job(name string) slog.Attr            { return slog.String(KeyJob, name) }
func Method(m string) slog.Attr            { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr            { return slog.Int(KeyStatus, code) }
func URL(u string) slog.Attr               { return slog.String(KeyURL, u) }
func Subject(s string) slog.Attr           { return slog.String(KeySubject, s) }
func Duration(d time.Duration) slog.Attr   { return DurationMS(float64(d.Microseconds()) / 1000) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
