package orbital

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
)

// Codespace groups the registered orrery errors.
const Codespace = "orrery"

var (
	// ErrInvalidElements is returned when orbital elements fall outside the bound-ellipse domain.
	ErrInvalidElements = errorsmod.Register(Codespace, 2, "invalid orbital elements")
	// ErrNonConvergence is returned when the Kepler solver exceeds its iteration cap.
	ErrNonConvergence = errorsmod.Register(Codespace, 3, "kepler solver did not converge")
)

// InvalidElementsError describes which element was rejected and why.
type InvalidElementsError struct {
	Body   string
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidElementsError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %s = %g: %s", ErrInvalidElements.Error(), e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("%s for %s: %s = %g: %s", ErrInvalidElements.Error(), e.Body, e.Field, e.Value, e.Reason)
}

func (e *InvalidElementsError) Unwrap() error { return ErrInvalidElements }

// NonConvergenceError carries the solver state at the point it gave up.
type NonConvergenceError struct {
	MeanAnomaly  float64
	Eccentricity float64
	Iterations   int
	LastDelta    float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("%s: M=%g e=%g after %d iterations (last |dE|=%g)",
		ErrNonConvergence.Error(), e.MeanAnomaly, e.Eccentricity, e.Iterations, e.LastDelta)
}

func (e *NonConvergenceError) Unwrap() error { return ErrNonConvergence }
