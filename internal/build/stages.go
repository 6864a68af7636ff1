package build

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// StageName identifies a build stage.
type StageName string

// Canonical stage names, in pipeline order.
const (
	StagePrepareOutput StageName = "prepare_output"
	StageSyncContent   StageName = "sync_content"
	StageLoadPosts     StageName = "load_posts"
	StageRenderPages   StageName = "render_pages"
	StageCopyStatic    StageName = "copy_static"
	StageWriteManifest StageName = "write_manifest"
	StagePostProcess   StageName = "post_process"
)

// StageErrorKind classifies a stage failure.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // build aborts
	StageErrorWarning  StageErrorKind = "warning"  // recorded, build continues
	StageErrorCanceled StageErrorKind = "canceled" // context cancellation
)

// StageError is a stage failure with its classification and cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// Transient reports whether retrying the build may succeed.
func (e *StageError) Transient() bool {
	if e == nil || e.Kind == StageErrorCanceled {
		return false
	}
	ce, ok := errors.AsClassified(e.Err)
	return ok && ce.CanRetry()
}

func newFatal(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func newWarning(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func newCanceled(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// StageResult is the outcome of one stage.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
)

// stageFunc executes one stage against the shared build state.
type stageFunc func(ctx context.Context, bs *buildState) error

type stageDef struct {
	name StageName
	fn   stageFunc
}

// pipeline is an ordered list of stage definitions.
type pipeline struct{ defs []stageDef }

func (p *pipeline) add(name StageName, fn stageFunc) *pipeline {
	p.defs = append(p.defs, stageDef{name: name, fn: fn})
	return p
}

func (p *pipeline) addIf(cond bool, name StageName, fn stageFunc) *pipeline {
	if cond {
		p.add(name, fn)
	}
	return p
}
