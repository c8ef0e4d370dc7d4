package orbital

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEarthLikeScenario(t *testing.T) {
	earth := mustElements(t, "Earth", 1.0, 0.00005, 102.94, 0.0167, -11.26, 8.79, 1)
	require.Equal(t, 365.25, earth.PeriodDays())

	start, err := ComputePosition(earth, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, start.Magnitude(), 0.015, "near-circular orbit should sit close to 1 AU")

	later, err := ComputePosition(earth, 365.25)
	require.NoError(t, err)
	assert.Less(t, later.Distance(start), 1e-4, "orbit must close after one period")
}

func TestPeriodicity(t *testing.T) {
	bodies := []*OrbitalElements{
		mustElements(t, "Mercury", 0.387, 7.004, 29.124, 0.2056, 48.331, 174.796, 0.240846),
		mustElements(t, "Neptune", 30.069, 1.770, 273.187, 0.0086, 131.784, 256.228, 164.8),
		mustElements(t, "Comet", 17.8, 162.3, 111.3, 0.967, 58.4, 38.4, 75.3),
	}
	for _, oe := range bodies {
		for _, days := range []float64{0, 12.5, 1000, -250, 36525} {
			a, err := ComputePosition(oe, days)
			require.NoError(t, err)
			b, err := ComputePosition(oe, days+oe.PeriodDays())
			require.NoError(t, err)
			assert.Less(t, a.Distance(b), 1e-6*oe.SemiMajorAxis(), "%s at t=%g", oe.Name(), days)
		}
	}
}

func TestComputePositionIsDeterministic(t *testing.T) {
	oe := mustElements(t, "Jupiter", 5.203, 1.304, 273.867, 0.0484, 100.464, 20.020, 11.862)
	first, err := ComputePosition(oe, 4321.5)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := ComputePosition(oe, 4321.5)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestStateIsConsistent(t *testing.T) {
	oe := mustElements(t, "Mars", 1.523, 1.850, 286.502, 0.0934, 49.558, 19.412, 1.8808)
	p := NewPropagator(DefaultSolver())

	for _, days := range []float64{0, 100, 5000, -77} {
		st, err := p.State(oe, days)
		require.NoError(t, err)

		assert.Equal(t, days, st.ElapsedDays)
		assert.InDelta(t, NormalizeAngle(oe.MeanAnomalyAt(days)), st.MeanAnomaly, 1e-15)
		assert.InDelta(t, st.MeanAnomaly, st.EccentricAnomaly-oe.Eccentricity()*math.Sin(st.EccentricAnomaly), 1e-6)
		assert.InDelta(t, st.Radius, st.Position.Magnitude(), 1e-12)
		assert.GreaterOrEqual(t, st.Radius, oe.PerihelionAU()-1e-12)
		assert.LessOrEqual(t, st.Radius, oe.AphelionAU()+1e-12)

		pos, err := p.ComputePosition(oe, days)
		require.NoError(t, err)
		assert.Equal(t, st.Position, pos)
	}
}

func TestPeriapsisAtZeroMeanAnomaly(t *testing.T) {
	oe := mustElements(t, "Test", 2, 15, 60, 0.4, 30, 0, 2.828)
	st, err := NewPropagator(DefaultSolver()).State(oe, 0)
	require.NoError(t, err)
	assert.InDelta(t, oe.PerihelionAU(), st.Radius, 1e-12)

	half, err := NewPropagator(DefaultSolver()).State(oe, oe.PeriodDays()/2)
	require.NoError(t, err)
	assert.InDelta(t, oe.AphelionAU(), half.Radius, 1e-9)
}

func TestComputePositionPropagatesSolverFailure(t *testing.T) {
	oe := mustElements(t, "Test", 1, 0, 0, 0.5, 0, 57.3, 1)
	p := NewPropagator(Solver{Tolerance: 1e-15, MaxIterations: 1})

	_, err := p.ComputePosition(oe, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonConvergence))
	assert.Contains(t, err.Error(), "Test")

	var nce *NonConvergenceError
	assert.True(t, errors.As(err, &nce))
}

func TestComputePositionNilElements(t *testing.T) {
	_, err := ComputePosition(nil, 0)
	assert.True(t, errors.Is(err, ErrInvalidElements))
}
