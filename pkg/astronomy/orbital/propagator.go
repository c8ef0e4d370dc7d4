package orbital

import (
	"fmt"

	astromath "github.com/oxygene76/orrery/pkg/astronomy/math"
)

// OrbitState is the full chain of intermediate values for one propagation.
type OrbitState struct {
	ElapsedDays      float64           `json:"elapsed_days"`
	MeanAnomaly      float64           `json:"mean_anomaly"`
	EccentricAnomaly float64           `json:"eccentric_anomaly"`
	TrueAnomaly      float64           `json:"true_anomaly"`
	Radius           float64           `json:"radius_au"`
	Position         astromath.Vector3 `json:"position"`
}

// Propagator computes positions from orbital elements and elapsed simulated time.
// It holds no per-call state and is safe for concurrent use.
type Propagator struct {
	Solver Solver
}

// NewPropagator returns a propagator using the given Kepler solver
func NewPropagator(solver Solver) Propagator {
	return Propagator{Solver: solver}
}

// ComputePosition propagates with the default solver.
func ComputePosition(oe *OrbitalElements, elapsedDays float64) (astromath.Vector3, error) {
	return NewPropagator(DefaultSolver()).ComputePosition(oe, elapsedDays)
}

// ComputePosition returns the ecliptic position in AU at elapsedDays since the epoch.
func (p Propagator) ComputePosition(oe *OrbitalElements, elapsedDays float64) (astromath.Vector3, error) {
	state, err := p.State(oe, elapsedDays)
	if err != nil {
		return astromath.Vector3{}, err
	}
	return state.Position, nil
}

// State runs M(t) → E → θ → position and returns every intermediate value.
func (p Propagator) State(oe *OrbitalElements, elapsedDays float64) (OrbitState, error) {
	if oe == nil {
		return OrbitState{}, fmt.Errorf("nil orbital elements: %w", ErrInvalidElements)
	}

	M := NormalizeAngle(oe.MeanAnomalyAt(elapsedDays))
	E, err := p.Solver.EccentricAnomaly(M, oe.eccentricity)
	if err != nil {
		return OrbitState{}, fmt.Errorf("propagate %s at t=%g days: %w", oe.name, elapsedDays, err)
	}
	theta := TrueAnomaly(E, oe.eccentricity)

	return OrbitState{
		ElapsedDays:      elapsedDays,
		MeanAnomaly:      M,
		EccentricAnomaly: E,
		TrueAnomaly:      theta,
		Radius:           oe.RadiusAt(theta),
		Position:         oe.PositionAtTrueAnomaly(theta),
	}, nil
}
