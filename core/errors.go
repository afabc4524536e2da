package core

import (
	"errors"
	"fmt"
)

// ErrBackendUnavailable marks a transient failure of an external backend
// (completion, embedding, vector store). Stages catch it at their boundary
// and switch to their deterministic fallback.
var ErrBackendUnavailable = errors.New("backend unavailable")

// ErrSchemaViolation marks an AI response that parsed but did not match the
// expected structure. Handled identically to ErrBackendUnavailable.
var ErrSchemaViolation = errors.New("response schema violation")

// PipelineError is a fatal error that escaped a stage despite its internal
// fallbacks. It carries the run summary accumulated up to the failure so
// callers keep the timing and decision record.
type PipelineError struct {
	Phase   Phase
	Summary *RunSummary
	Err     error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed in %s phase: %v", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
