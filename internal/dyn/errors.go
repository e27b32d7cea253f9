package dyn

import (
	"errors"
	"fmt"
)

// Domain errors for the estimation pipeline.
var (
	// ErrModelEval indicates parameters that make the derivative undefined.
	ErrModelEval = errors.New("dyn: model evaluation undefined for parameters")

	// ErrIntegrationFailure indicates the solver could not meet its error
	// tolerance within the step budget.
	ErrIntegrationFailure = errors.New("dyn: integration failure")

	// ErrStepTooSmall indicates the adaptive timestep collapsed below minimum.
	ErrStepTooSmall = errors.New("dyn: adaptive timestep below minimum")

	// ErrOutOfRange indicates a trajectory query outside the solved span.
	ErrOutOfRange = errors.New("dyn: time outside trajectory span")

	// ErrPriorCountMismatch indicates a prior set whose length does not equal
	// the model's parameter count.
	ErrPriorCountMismatch = errors.New("dyn: prior count does not match parameter count")

	// ErrBackendFailure indicates an inference backend errored or crashed.
	ErrBackendFailure = errors.New("dyn: backend failure")

	// ErrDimensionMismatch indicates mismatched state dimensions.
	ErrDimensionMismatch = errors.New("dyn: dimension mismatch between state and system")
)

// SolveError wraps an integration error with solver context.
type SolveError struct {
	T       float64
	Step    int
	Wrapped error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("solve: step %d (t=%.4f): %v", e.Step, e.T, e.Wrapped)
}

func (e *SolveError) Unwrap() error {
	return e.Wrapped
}
