package build

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/linkverify"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/state"
	"git.home.luguber.info/inful/blogbuilder/internal/version"
)

// ReportFile is the name of the persisted JSON report in the state directory.
const ReportFile = "build-report.json"

// Outcome is the final result of a build.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// IssueSeverity is the normalized severity of a report issue.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ReportIssue is a single problem recorded during the build.
type ReportIssue struct {
	Stage     StageName     `json:"stage"`
	Severity  IssueSeverity `json:"severity"`
	Message   string        `json:"message"`
	Transient bool          `json:"transient"`
}

// StageCount aggregates outcomes for a stage.
type StageCount struct {
	Success  int `json:"success"`
	Warning  int `json:"warning"`
	Fatal    int `json:"fatal"`
	Canceled int `json:"canceled"`
}

// BuildReport captures what a build did.
type BuildReport struct {
	BuildID         string
	Trigger         string
	Start           time.Time
	End             time.Time
	Outcome         Outcome
	Errors          []error // fatal or canceled, at most one today
	Warnings        []error
	Issues          []ReportIssue
	StageDurations  map[StageName]time.Duration
	StageErrorKinds map[StageName]StageErrorKind
	StageCounts     map[StageName]StageCount

	Commit        string // content repository HEAD after sync
	Posts         int
	ExcludedPosts int
	Pages         int
	StaticFiles   int
	BrokenLinks   []linkverify.BrokenLink
}

func newReport(buildID, trigger string, start time.Time) *BuildReport {
	return &BuildReport{
		BuildID:         buildID,
		Trigger:         trigger,
		Start:           start,
		StageDurations:  make(map[StageName]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		StageCounts:     make(map[StageName]StageCount),
	}
}

// Duration is the wall time between start and finish.
func (r *BuildReport) Duration() time.Duration {
	if r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start)
}

// addIssue records an issue and mirrors it into Errors or Warnings.
func (r *BuildReport) addIssue(se *StageError) {
	sev := SeverityError
	if se.Kind == StageErrorWarning {
		sev = SeverityWarning
	}
	r.Issues = append(r.Issues, ReportIssue{Stage: se.Stage, Severity: sev, Message: se.Err.Error(), Transient: se.Transient()})
	r.StageErrorKinds[se.Stage] = se.Kind
	if sev == SeverityWarning {
		r.Warnings = append(r.Warnings, se)
		return
	}
	r.Errors = append(r.Errors, se)
}

// recordStageResult updates counters and emits the stage metric.
func (r *BuildReport) recordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	sc := r.StageCounts[stage]
	switch res {
	case StageResultSuccess:
		sc.Success++
		recorder.IncStageResult(string(stage), metrics.ResultSuccess)
	case StageResultWarning:
		sc.Warning++
		recorder.IncStageResult(string(stage), metrics.ResultWarning)
	case StageResultFatal:
		sc.Fatal++
		recorder.IncStageResult(string(stage), metrics.ResultFatal)
	case StageResultCanceled:
		sc.Canceled++
		recorder.IncStageResult(string(stage), metrics.ResultCanceled)
	}
	r.StageCounts[stage] = sc
}

// finish stamps the end time and derives the outcome.
func (r *BuildReport) finish(end time.Time) {
	r.End = end
	r.deriveOutcome()
}

func (r *BuildReport) deriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// FailedStage returns the stage that aborted the build, if any.
func (r *BuildReport) FailedStage() StageName {
	for _, e := range r.Errors {
		var se *StageError
		if errors.As(e, &se) {
			return se.Stage
		}
	}
	return ""
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	return fmt.Sprintf("build=%s posts=%d excluded=%d pages=%d static=%d broken_links=%d duration=%s errors=%d warnings=%d outcome=%s",
		r.BuildID, r.Posts, r.ExcludedPosts, r.Pages, r.StaticFiles, len(r.BrokenLinks),
		r.Duration().Truncate(time.Millisecond), len(r.Errors), len(r.Warnings), r.Outcome)
}

// reportJSON is the persisted shape of a BuildReport.
type reportJSON struct {
	BuildID          string                    `json:"build_id"`
	Trigger          string                    `json:"trigger,omitempty"`
	Version          string                    `json:"version"`
	Start            time.Time                 `json:"start"`
	End              time.Time                 `json:"end"`
	DurationMS       int64                     `json:"duration_ms"`
	Outcome          Outcome                   `json:"outcome"`
	Errors           []string                  `json:"errors"`
	Warnings         []string                  `json:"warnings"`
	Issues           []ReportIssue             `json:"issues"`
	StageDurationsMS map[string]int64          `json:"stage_durations_ms"`
	StageErrorKinds  map[string]string         `json:"stage_error_kinds,omitempty"`
	StageCounts      map[string]StageCount     `json:"stage_counts"`
	Commit           string                    `json:"commit,omitempty"`
	Posts            int                       `json:"posts"`
	ExcludedPosts    int                       `json:"excluded_posts"`
	Pages            int                       `json:"pages"`
	StaticFiles      int                       `json:"static_files"`
	BrokenLinks      []linkverify.BrokenLink   `json:"broken_links,omitempty"`
}

func (r *BuildReport) serializable() reportJSON {
	out := reportJSON{
		BuildID:          r.BuildID,
		Trigger:          r.Trigger,
		Version:          version.Version,
		Start:            r.Start,
		End:              r.End,
		DurationMS:       r.Duration().Milliseconds(),
		Outcome:          r.Outcome,
		Errors:           errorStrings(r.Errors),
		Warnings:         errorStrings(r.Warnings),
		Issues:           r.Issues,
		StageDurationsMS: make(map[string]int64, len(r.StageDurations)),
		StageErrorKinds:  make(map[string]string, len(r.StageErrorKinds)),
		StageCounts:      make(map[string]StageCount, len(r.StageCounts)),
		Commit:           r.Commit,
		Posts:            r.Posts,
		ExcludedPosts:    r.ExcludedPosts,
		Pages:            r.Pages,
		StaticFiles:      r.StaticFiles,
		BrokenLinks:      r.BrokenLinks,
	}
	if out.Issues == nil {
		out.Issues = []ReportIssue{}
	}
	for k, v := range r.StageDurations {
		out.StageDurationsMS[string(k)] = v.Milliseconds()
	}
	for k, v := range r.StageErrorKinds {
		out.StageErrorKinds[string(k)] = string(v)
	}
	for k, v := range r.StageCounts {
		out.StageCounts[string(k)] = v
	}
	return out
}

func errorStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

// Persist writes the report as JSON into dir, atomically.
func (r *BuildReport) Persist(dir string) error {
	if r.End.IsZero() {
		r.finish(time.Now())
	}
	return state.WriteJSON(filepath.Join(dir, ReportFile), r.serializable())
}
