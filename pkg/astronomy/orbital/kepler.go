package orbital

import (
	"math"
)

const (
	// DefaultTolerance is the |ΔE| in radians at which Newton iteration stops.
	DefaultTolerance = 1e-6
	// DefaultMaxIterations bounds the Newton iteration.
	DefaultMaxIterations = 100

	// highEccentricity is where seeding with M stops being reliable.
	highEccentricity = 0.8
)

// Solver solves Kepler's equation M = E - e·sin(E) by Newton-Raphson iteration.
type Solver struct {
	Tolerance     float64
	MaxIterations int
}

// DefaultSolver returns a solver with the reference tolerance and a 100 iteration cap.
func DefaultSolver() Solver {
	return Solver{Tolerance: DefaultTolerance, MaxIterations: DefaultMaxIterations}
}

// SolveKepler returns the eccentric anomaly for mean anomaly M using DefaultSolver.
func SolveKepler(meanAnomaly, eccentricity float64) (float64, error) {
	return DefaultSolver().EccentricAnomaly(meanAnomaly, eccentricity)
}

// EccentricAnomaly solves Kepler's equation for E. M is not reduced; the returned E lies on
// the same 2π branch as M.
func (s Solver) EccentricAnomaly(meanAnomaly, eccentricity float64) (float64, error) {
	if math.IsNaN(eccentricity) || eccentricity < 0 || eccentricity >= 1 {
		return 0, &InvalidElementsError{Field: "eccentricity", Value: eccentricity, Reason: "must be in [0, 1)"}
	}
	if math.IsNaN(meanAnomaly) || math.IsInf(meanAnomaly, 0) {
		return 0, &NonConvergenceError{MeanAnomaly: meanAnomaly, Eccentricity: eccentricity, LastDelta: math.NaN()}
	}

	tolerance := s.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	maxIterations := s.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	E := initialGuess(meanAnomaly, eccentricity)
	delta := math.Inf(1)
	for i := 0; i < maxIterations; i++ {
		f := E - eccentricity*math.Sin(E) - meanAnomaly
		fp := 1 - eccentricity*math.Cos(E)

		delta = f / fp
		E -= delta

		if math.IsNaN(E) || math.IsInf(E, 0) {
			break
		}
		if math.Abs(delta) <= tolerance {
			return E, nil
		}
	}

	return 0, &NonConvergenceError{
		MeanAnomaly:  meanAnomaly,
		Eccentricity: eccentricity,
		Iterations:   maxIterations,
		LastDelta:    math.Abs(delta),
	}
}

// initialGuess seeds with M. Above highEccentricity Newton from M can overshoot into
// neighbouring branches, so the seed moves to the middle of M's own branch instead.
func initialGuess(meanAnomaly, eccentricity float64) float64 {
	if eccentricity <= highEccentricity {
		return meanAnomaly
	}
	branch := math.Floor(meanAnomaly / twoPi)
	return branch*twoPi + math.Pi
}

// TrueAnomaly converts eccentric anomaly E to true anomaly θ in (-π, π].
func TrueAnomaly(eccentricAnomaly, eccentricity float64) float64 {
	sinE, cosE := math.Sincos(eccentricAnomaly)
	denom := 1 - eccentricity*cosE
	sinTheta := math.Sqrt(1-eccentricity*eccentricity) * sinE / denom
	cosTheta := (cosE - eccentricity) / denom
	return math.Atan2(sinTheta, cosTheta)
}
