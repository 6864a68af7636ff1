package build

import (
	"context"
	"errors"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// runStages executes stages in order, recording timing and stopping on the
// first fatal or canceled stage.
func runStages(ctx context.Context, bs *buildState, defs []stageDef) error {
	for _, st := range defs {
		if err := ctx.Err(); err != nil {
			se := newCanceled(st.name, err)
			bs.report.addIssue(se)
			bs.report.recordStageResult(st.name, StageResultCanceled, bs.recorder)
			return se
		}

		bs.logger.Debug("Stage started", logfields.Stage(string(st.name)))
		t0 := time.Now()
		err := st.fn(ctx, bs)
		dur := time.Since(t0)
		bs.report.StageDurations[st.name] = dur
		bs.recorder.ObserveStageDuration(string(st.name), dur)

		se := classify(st.name, err)
		if se == nil {
			bs.report.recordStageResult(st.name, StageResultSuccess, bs.recorder)
			bs.logger.Debug("Stage finished", logfields.Stage(string(st.name)), logfields.Duration(dur))
			continue
		}

		bs.report.addIssue(se)
		switch se.Kind {
		case StageErrorWarning:
			bs.report.recordStageResult(st.name, StageResultWarning, bs.recorder)
			bs.logger.Warn("Stage finished with warnings",
				logfields.Stage(string(st.name)), logfields.Duration(dur), logfields.Error(se.Err))
		case StageErrorCanceled:
			bs.report.recordStageResult(st.name, StageResultCanceled, bs.recorder)
			return se
		default:
			bs.report.recordStageResult(st.name, StageResultFatal, bs.recorder)
			return se
		}
	}
	return nil
}

// classify normalizes a stage return value. Plain errors are fatal, context
// errors are cancellations.
func classify(stage StageName, err error) *StageError {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return newCanceled(stage, err)
	}
	return newFatal(stage, err)
}
