package simulation

import (
	"math"
	"time"

	errorsmod "cosmossdk.io/errors"

	"github.com/oxygene76/orrery/pkg/astronomy/orbital"
)

const (
	// MinSpeed and MaxSpeed bound the user speed multiplier in simulated days per wall second.
	MinSpeed = 0.1
	MaxSpeed = 100.0
	// DefaultSpeed advances one simulated day per wall-clock second.
	DefaultSpeed = 1.0
)

// ErrInvalidSpeed is returned for speed multipliers outside [MinSpeed, MaxSpeed].
var ErrInvalidSpeed = errorsmod.Register(orbital.Codespace, 5, "invalid simulation speed")

// Clock tracks simulated time as days elapsed since the catalog epoch. Each frame advances
// it by the wall-clock delta times the current speed multiplier.
type Clock struct {
	elapsedDays float64
	speed       float64
	frame       int
}

// NewClock returns a clock at startDays with the given speed.
func NewClock(startDays, speed float64) (*Clock, error) {
	if err := ValidateSpeed(speed); err != nil {
		return nil, err
	}
	return &Clock{elapsedDays: startDays, speed: speed}, nil
}

// ElapsedDays returns simulated days since the epoch
func (c *Clock) ElapsedDays() float64 { return c.elapsedDays }

// Speed returns the current multiplier
func (c *Clock) Speed() float64 { return c.speed }

// Frame returns the number of frames advanced so far
func (c *Clock) Frame() int { return c.frame }

// Advance moves simulated time forward by wallDelta × speed and returns the new elapsed days.
// Negative deltas are treated as zero.
func (c *Clock) Advance(wallDelta time.Duration) float64 {
	c.elapsedDays = c.after(wallDelta)
	c.frame++
	return c.elapsedDays
}

// after is the elapsed time Advance(wallDelta) would produce.
func (c *Clock) after(wallDelta time.Duration) float64 {
	if wallDelta <= 0 {
		return c.elapsedDays
	}
	return c.elapsedDays + wallDelta.Seconds()*c.speed
}

// SetSpeed changes the multiplier. It reports whether the speed actually changed.
func (c *Clock) SetSpeed(speed float64) (bool, error) {
	if err := ValidateSpeed(speed); err != nil {
		return false, err
	}
	changed := speed != c.speed
	c.speed = speed
	return changed, nil
}

// ValidateSpeed reports ErrInvalidSpeed for NaN or values outside [MinSpeed, MaxSpeed].
func ValidateSpeed(speed float64) error {
	if math.IsNaN(speed) || speed < MinSpeed || speed > MaxSpeed {
		return errorsmod.Wrapf(ErrInvalidSpeed, "%g not in [%g, %g]", speed, MinSpeed, MaxSpeed)
	}
	return nil
}
