package installer

import (
	"errors"
	"fmt"

	"github.com/flanksource/ghidra-install/pkg/types"
)

// Stage names a step of the install
type Stage string

const (
	StageSource  Stage = "source"
	StageVersion Stage = "version"
	StageExtract Stage = "extract"
	StageRuntime Stage = "runtime"
	StageBundle  Stage = "bundle"
	StageIcon    Stage = "icon"
	StageDock    Stage = "dock"
)

// Kind separates errors that abort the run from those that are only reported
type Kind int

const (
	Fatal Kind = iota
	Degraded
)

func (k Kind) String() string {
	if k == Degraded {
		return "degraded"
	}
	return "fatal"
}

// StageError is an error raised by one stage
type StageError struct {
	Stage Stage
	Kind  Kind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func fatal(stage Stage, err error) error {
	return &StageError{Stage: stage, Kind: Fatal, Err: err}
}

// degrade records err as a warning on result; the run continues
func degrade(result *types.InstallResult, stage Stage, err error) {
	result.Warnings = append(result.Warnings, types.Warning{
		Stage:   string(stage),
		Message: err.Error(),
		Err:     &StageError{Stage: stage, Kind: Degraded, Err: err},
	})
}

// IsFatal reports whether err should stop the run. Errors that are not StageErrors are fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Kind == Fatal
	}
	return true
}

// StageOf returns the stage that raised err, or "" for errors from outside the resolver
func StageOf(err error) Stage {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}
