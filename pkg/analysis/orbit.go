package analysis

import (
	"fmt"
	"math"

	"cosmossdk.io/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/oxygene76/orrery/pkg/astronomy/orbital"
)

// OrbitSummary describes one body's orbit sampled uniformly in time over a single period.
type OrbitSummary struct {
	Body         string  `json:"body"`
	Samples      int     `json:"samples"`
	PeriodDays   float64 `json:"period_days"`
	MeanRadius   float64 `json:"mean_radius_au"`
	StdDevRadius float64 `json:"stddev_radius_au"`
	MinRadius    float64 `json:"min_radius_au"`
	MaxRadius    float64 `json:"max_radius_au"`
	PerihelionAU float64 `json:"perihelion_au"`
	AphelionAU   float64 `json:"aphelion_au"`
	MaxAbsZ      float64 `json:"max_abs_z_au"`
	// ClosureError is the distance between the positions at t0 and t0+P.
	ClosureError float64 `json:"closure_error_au"`
}

// Manager runs orbit analyses with a shared propagator.
type Manager struct {
	propagator orbital.Propagator
	logger     log.Logger
}

// NewManager creates an analysis manager
func NewManager(propagator orbital.Propagator, logger log.Logger) *Manager {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Manager{propagator: propagator, logger: logger}
}

// SummarizeOrbit propagates oe at samples evenly spaced instants in [t0, t0+P).
func (m *Manager) SummarizeOrbit(oe *orbital.OrbitalElements, startDays float64, samples int) (*OrbitSummary, error) {
	if oe == nil {
		return nil, fmt.Errorf("nil orbital elements: %w", orbital.ErrInvalidElements)
	}
	if samples < 2 {
		return nil, fmt.Errorf("need at least 2 samples, got %d", samples)
	}

	period := oe.PeriodDays()
	step := period / float64(samples)
	radii := make([]float64, samples)
	maxZ := 0.0

	for i := 0; i < samples; i++ {
		pos, err := m.propagator.ComputePosition(oe, startDays+float64(i)*step)
		if err != nil {
			return nil, fmt.Errorf("failed to sample %s: %w", oe.Name(), err)
		}
		radii[i] = pos.Magnitude()
		maxZ = math.Max(maxZ, math.Abs(pos.Z))
	}

	first, err := m.propagator.ComputePosition(oe, startDays)
	if err != nil {
		return nil, err
	}
	closing, err := m.propagator.ComputePosition(oe, startDays+period)
	if err != nil {
		return nil, err
	}

	summary := &OrbitSummary{
		Body:         oe.Name(),
		Samples:      samples,
		PeriodDays:   period,
		MeanRadius:   stat.Mean(radii, nil),
		StdDevRadius: stat.StdDev(radii, nil),
		MinRadius:    floats.Min(radii),
		MaxRadius:    floats.Max(radii),
		PerihelionAU: oe.PerihelionAU(),
		AphelionAU:   oe.AphelionAU(),
		MaxAbsZ:      maxZ,
		ClosureError: closing.Distance(first),
	}

	m.logger.Debug("orbit summarized",
		"body", summary.Body,
		"mean_radius_au", summary.MeanRadius,
		"stddev_radius_au", summary.StdDevRadius,
		"closure_error_au", summary.ClosureError,
	)
	return summary, nil
}

// SummarizeAll summarizes each body in order.
func (m *Manager) SummarizeAll(bodies []*orbital.OrbitalElements, startDays float64, samples int) ([]*OrbitSummary, error) {
	out := make([]*OrbitSummary, 0, len(bodies))
	for _, oe := range bodies {
		s, err := m.SummarizeOrbit(oe, startDays, samples)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
