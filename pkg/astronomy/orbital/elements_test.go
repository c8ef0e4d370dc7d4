package orbital

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustElements(t *testing.T, name string, a, incDeg, argPeriDeg, e, nodeDeg, m0Deg, years float64) *OrbitalElements {
	t.Helper()
	oe, err := NewOrbitalElements(name, a, incDeg, argPeriDeg, e, nodeDeg, m0Deg, years)
	require.NoError(t, err)
	return oe
}

func TestNewOrbitalElementsConvertsUnits(t *testing.T) {
	oe := mustElements(t, "Mars", 1.523, 1.850, 286.502, 0.0934, 49.558, 19.412, 1.8808)

	assert.Equal(t, "Mars", oe.Name())
	assert.Equal(t, 1.523, oe.SemiMajorAxis())
	assert.Equal(t, 0.0934, oe.Eccentricity())
	assert.InDelta(t, 1.850*math.Pi/180, oe.Inclination(), 1e-15)
	assert.InDelta(t, 286.502*math.Pi/180, oe.ArgumentOfPeriapsis(), 1e-15)
	assert.InDelta(t, 49.558*math.Pi/180, oe.LongitudeAscendingNode(), 1e-15)
	assert.InDelta(t, 19.412*math.Pi/180, oe.EpochMeanAnomaly(), 1e-15)
	assert.InDelta(t, 1.8808*365.25, oe.PeriodDays(), 1e-9)
	assert.InDelta(t, twoPi/(1.8808*365.25), oe.MeanMotion(), 1e-15)
}

func TestNewOrbitalElementsRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		a, e  float64
		years float64
		inc   float64
		field string
	}{
		{"zero axis", 0, 0.1, 1, 0, "semi_major_axis"},
		{"negative axis", -1, 0.1, 1, 0, "semi_major_axis"},
		{"parabolic", 1, 1, 1, 0, "eccentricity"},
		{"hyperbolic", 1, 1.2, 1, 0, "eccentricity"},
		{"negative eccentricity", 1, -0.01, 1, 0, "eccentricity"},
		{"zero period", 1, 0.1, 0, 0, "sidereal_period"},
		{"negative period", 1, 0.1, -2, 0, "sidereal_period"},
		{"nan inclination", 1, 0.1, 1, math.NaN(), "inclination"},
		{"infinite axis", math.Inf(1), 0.1, 1, 0, "semi_major_axis"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oe, err := NewOrbitalElements("Bad", tt.a, tt.inc, 0, tt.e, 0, 0, tt.years)
			require.Error(t, err)
			assert.Nil(t, oe)
			assert.True(t, errors.Is(err, ErrInvalidElements))

			var iee *InvalidElementsError
			require.True(t, errors.As(err, &iee))
			assert.Equal(t, tt.field, iee.Field)
			assert.Equal(t, "Bad", iee.Body)
			assert.Contains(t, err.Error(), "Bad")
		})
	}
}

func TestApsides(t *testing.T) {
	oe := mustElements(t, "Mercury", 0.387, 7.004, 29.124, 0.2056, 48.331, 174.796, 0.240846)
	assert.InDelta(t, 0.387*(1-0.2056), oe.PerihelionAU(), 1e-15)
	assert.InDelta(t, 0.387*(1+0.2056), oe.AphelionAU(), 1e-15)
	assert.InDelta(t, (48.331+29.124)*math.Pi/180, oe.LongitudeOfPerihelion(), 1e-12)
}

func TestMeanAnomalyAtGrowsLinearly(t *testing.T) {
	oe := mustElements(t, "Earth", 1, 0, 0, 0.0167, 0, 90, 1)
	assert.InDelta(t, math.Pi/2, oe.MeanAnomalyAt(0), 1e-15)
	assert.InDelta(t, math.Pi/2+math.Pi, oe.MeanAnomalyAt(365.25/2), 1e-12)
	assert.InDelta(t, math.Pi/2+10*twoPi, oe.MeanAnomalyAt(3652.5), 1e-9, "M(t) is not reduced")
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{1, 1},
		{twoPi, 0},
		{-1, twoPi - 1},
		{7 * math.Pi, math.Pi},
		{-4 * twoPi, 0},
	}
	for _, tt := range tests {
		got := NormalizeAngle(tt.in)
		assert.InDelta(t, tt.want, got, 1e-12, "NormalizeAngle(%g)", tt.in)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.Less(t, got, twoPi)
	}
}
