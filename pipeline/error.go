package pipeline

import (
	"errors"
	"fmt"
)

// FailureKind places a stage failure in the installer's error taxonomy.
type FailureKind int

const (
	KindDependencyInstall FailureKind = iota
	KindTransportUnavailable
	KindEnvironment
	KindAcquisition
	KindConfigureArtifact
	KindBuildArtifact
	KindVerification
)

// StageError is a stage's failure result. Stages return it instead of
// panicking; the controller is the sole decision point for whether it is
// fatal or recoverable.
type StageError struct {
	Stage   string
	Kind    FailureKind
	Reason  string
	Excerpt string // captured log excerpt, may be empty
	LogPath string // file holding the full captured output, may be empty
	Err     error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Reason)
}

func (e *StageError) Unwrap() error { return e.Err }

// AsStageError normalizes any stage failure into a *StageError.
func AsStageError(stage string, err error) *StageError {
	var se *StageError
	if errors.As(err, &se) {
		return se
	}
	return &StageError{Stage: stage, Reason: err.Error(), Err: err}
}
