package worker

import (
	"errors"
	"fmt"
)

type Stage string

const (
	StageAcquisition   Stage = "acquisition"
	StageNormalization Stage = "normalization"
	StageBuild         Stage = "build"
	StageRender        Stage = "render"
	StagePublish       Stage = "publish"
)

var (
	ErrAcquisition   = errors.New("asset acquisition failed")
	ErrNormalization = errors.New("image normalization failed")
	ErrBuild         = errors.New("render command build failed")
	ErrRender        = errors.New("render failed")
	ErrPublish       = errors.New("artifact publish failed")
)

var stageSentinels = map[Stage]error{
	StageAcquisition:   ErrAcquisition,
	StageNormalization: ErrNormalization,
	StageBuild:         ErrBuild,
	StageRender:        ErrRender,
	StagePublish:       ErrPublish,
}

// PipelineError wraps a failure with the stage that produced it. Every
// PipelineError is terminal for its job.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return string(e.Stage)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the sentinel of the error's stage.
func (e *PipelineError) Is(target error) bool {
	if e == nil {
		return false
	}
	sentinel, ok := stageSentinels[e.Stage]
	return ok && target == sentinel
}

func stageError(stage Stage, err error) error {
	return &PipelineError{Stage: stage, Err: err}
}

func stageErrorf(stage Stage, format string, args ...interface{}) error {
	return &PipelineError{Stage: stage, Err: fmt.Errorf(format, args...)}
}
