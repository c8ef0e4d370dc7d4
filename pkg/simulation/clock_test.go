package simulation

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	astromath "github.com/oxygene76/orrery/pkg/astronomy/math"
)

func TestClockAdvance(t *testing.T) {
	c, err := NewClock(0, DefaultSpeed)
	require.NoError(t, err)

	assert.Equal(t, 0.5, c.Advance(500*time.Millisecond))
	assert.Equal(t, 1.5, c.Advance(time.Second))
	assert.Equal(t, 2, c.Frame())

	c.Advance(-time.Second)
	assert.Equal(t, 1.5, c.ElapsedDays(), "negative deltas do not rewind time")
	assert.Equal(t, 3, c.Frame())
}

func TestClockSpeedChangeDoesNotJump(t *testing.T) {
	c, err := NewClock(10, 2)
	require.NoError(t, err)

	c.Advance(time.Second)
	require.Equal(t, 12.0, c.ElapsedDays())

	changed, err := c.SetSpeed(50)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 12.0, c.ElapsedDays())

	c.Advance(100 * time.Millisecond)
	assert.InDelta(t, 17.0, c.ElapsedDays(), 1e-12)

	changed, err = c.SetSpeed(50)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestClockRejectsOutOfRangeSpeed(t *testing.T) {
	for _, s := range []float64{0, 0.05, -1, 100.5, math.NaN()} {
		_, err := NewClock(0, s)
		require.Error(t, err, "speed %g", s)
		assert.True(t, errors.Is(err, ErrInvalidSpeed))
	}

	c, err := NewClock(0, MaxSpeed)
	require.NoError(t, err)
	_, err = c.SetSpeed(MinSpeed / 2)
	assert.True(t, errors.Is(err, ErrInvalidSpeed))
	assert.Equal(t, MaxSpeed, c.Speed())
}

func TestTrailDropsOldest(t *testing.T) {
	tr := NewTrail(3)
	for i := 1; i <= 5; i++ {
		tr.Push(astromath.Vector3{X: float64(i)})
	}
	assert.Equal(t, 3, tr.Len())
	assert.Equal(t, 3, tr.Cap())

	pts := tr.Points()
	require.Len(t, pts, 3)
	assert.Equal(t, []float64{3, 4, 5}, []float64{pts[0].X, pts[1].X, pts[2].X})

	tr.Reset()
	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Points())

	tr.Push(astromath.Vector3{X: 9})
	assert.Equal(t, 9.0, tr.Points()[0].X)
}

func TestTrailDefaultCapacity(t *testing.T) {
	tr := NewTrail(0)
	assert.Equal(t, DefaultTrailLength, tr.Cap())
	for i := 0; i < DefaultTrailLength+10; i++ {
		tr.Push(astromath.Vector3{X: float64(i)})
	}
	assert.Equal(t, DefaultTrailLength, tr.Len())
	assert.Equal(t, 10.0, tr.Points()[0].X)
}
