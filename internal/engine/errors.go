package engine

import (
	"errors"
	"fmt"
)

// ErrUnsupported reports an operation the configured driver does not implement.
var ErrUnsupported = errors.New("operation not supported by engine driver")

// InitializationError means the engine rejected the project/gateway/environment
// combination while constructing a context. Fatal at definition time.
type InitializationError struct {
	ProjectDir  string
	Gateway     string
	Environment string
	Err         error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("engine initialization failed (project=%s gateway=%s environment=%s): %v",
		e.ProjectDir, e.Gateway, e.Environment, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// PlanError means the engine rejected a requested change while planning.
// Message is the engine's native message, verbatim.
type PlanError struct {
	ModelID string
	Message string
}

func (e *PlanError) Error() string {
	if e.ModelID == "" {
		return fmt.Sprintf("plan rejected: %s", e.Message)
	}
	return fmt.Sprintf("plan rejected for model %s: %s", e.ModelID, e.Message)
}

// EvaluationError means a model's transformation failed during execution.
// It aborts the current run; the affected model surfaces as a failed
// materialization.
type EvaluationError struct {
	ModelID string
	Message string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation failed for model %s: %s", e.ModelID, e.Message)
}

// AuditFailure means a declared audit ran and returned false. It degrades
// only its own check result, never sibling materializations.
type AuditFailure struct {
	ModelID string
	Audit   string
	Count   int64
	Message string
}

func (e *AuditFailure) Error() string {
	return fmt.Sprintf("audit %s failed for model %s (%d rows): %s", e.Audit, e.ModelID, e.Count, e.Message)
}
