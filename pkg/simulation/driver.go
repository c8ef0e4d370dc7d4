package simulation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"cosmossdk.io/log"
	"github.com/google/uuid"

	"github.com/oxygene76/orrery/pkg/astronomy/epoch"
	astromath "github.com/oxygene76/orrery/pkg/astronomy/math"
	"github.com/oxygene76/orrery/pkg/astronomy/orbital"
)

// BodySample is the position of one body in one frame.
type BodySample struct {
	Name     string            `json:"name"`
	Position astromath.Vector3 `json:"position"`
}

// Frame is the outcome of one driver step. Bodies whose propagation failed are absent and
// listed in Skipped.
type Frame struct {
	Index       int
	ElapsedDays float64
	JulianDate  float64
	Date        epoch.CalendarDate
	Bodies      []BodySample
	Skipped     []string
}

// Options configures a Driver.
type Options struct {
	Solver      orbital.Solver
	StartDays float64
	// Speed is left zero by callers that want DefaultSpeed; any other value must lie in
	// [MinSpeed, MaxSpeed].
	Speed       float64
	TrailLength int
	// Workers > 1 propagates bodies concurrently within each frame; below 1 means sequential.
	Workers int
	Logger  log.Logger
	Metrics *Metrics
}

// Driver advances a simulated clock and propagates every body once per frame.
type Driver struct {
	bodies     []*orbital.OrbitalElements
	propagator orbital.Propagator
	clock      *Clock
	trails     []*Trail
	workers    int
	logger     log.Logger
	metrics    *Metrics
	runID      string
}

// NewDriver builds a driver over bodies; order of bodies fixes the order of frame output.
func NewDriver(bodies []*orbital.OrbitalElements, opts Options) (*Driver, error) {
	if len(bodies) == 0 {
		return nil, fmt.Errorf("driver needs at least one body")
	}
	for i, b := range bodies {
		if b == nil {
			return nil, fmt.Errorf("body %d: %w", i, orbital.ErrInvalidElements)
		}
	}

	speed := opts.Speed
	if speed == 0 {
		speed = DefaultSpeed
	}
	clock, err := NewClock(opts.StartDays, speed)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	trails := make([]*Trail, len(bodies))
	for i := range trails {
		trails[i] = NewTrail(opts.TrailLength)
	}

	runID := uuid.NewString()
	return &Driver{
		bodies:     append([]*orbital.OrbitalElements(nil), bodies...),
		propagator: orbital.NewPropagator(opts.Solver),
		clock:      clock,
		trails:     trails,
		workers:    workers,
		logger:     logger.With("run_id", runID),
		metrics:    metrics,
		runID:      runID,
	}, nil
}

// RunID identifies this driver's run in logs and snapshots
func (d *Driver) RunID() string { return d.runID }

// Clock exposes the simulated clock
func (d *Driver) Clock() *Clock { return d.clock }

// SetSpeed changes the speed multiplier and clears every trail if the value changed.
func (d *Driver) SetSpeed(speed float64) error {
	changed, err := d.clock.SetSpeed(speed)
	if err != nil {
		return err
	}
	if changed {
		for _, t := range d.trails {
			t.Reset()
		}
		d.logger.Info("simulation speed changed", "speed", speed)
	}
	return nil
}

// BodyTrail is the recent path of one body, oldest point first.
type BodyTrail struct {
	Name   string              `json:"name"`
	Points []astromath.Vector3 `json:"points"`
}

// Trail returns the recent positions of the named body, oldest first. Names match
// case-insensitively.
func (d *Driver) Trail(name string) ([]astromath.Vector3, bool) {
	for i, b := range d.bodies {
		if strings.EqualFold(b.Name(), name) {
			return d.trails[i].Points(), true
		}
	}
	return nil, false
}

// Trails returns every body's trail in body order.
func (d *Driver) Trails() []BodyTrail {
	out := make([]BodyTrail, len(d.bodies))
	for i, b := range d.bodies {
		out[i] = BodyTrail{Name: b.Name(), Points: d.trails[i].Points()}
	}
	return out
}

// Step advances the clock by wallDelta and propagates every body at the new time. If ctx is
// cancelled before the frame completes, nothing is applied: the clock, trails and metrics
// are left as they were.
func (d *Driver) Step(ctx context.Context, wallDelta time.Duration) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	start := time.Now()

	days := d.clock.after(wallDelta)
	results := d.propagate(ctx, days)
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	d.clock.Advance(wallDelta)
	frame := d.commit(d.clock.Frame(), days, results)

	d.metrics.Frames.Inc()
	d.metrics.ElapsedDays.Set(days)
	d.metrics.FrameDuration.Observe(time.Since(start).Seconds())
	return frame, nil
}

type bodyResult struct {
	pos astromath.Vector3
	err error
}

func (d *Driver) propagate(ctx context.Context, days float64) []bodyResult {
	results := make([]bodyResult, len(d.bodies))
	if d.workers == 1 || len(d.bodies) == 1 {
		for i, b := range d.bodies {
			pos, err := d.propagator.ComputePosition(b, days)
			results[i] = bodyResult{pos: pos, err: err}
		}
	} else {
		d.evaluateParallel(ctx, days, results)
	}
	return results
}

// commit builds the frame from propagation results and records them in trails and metrics.
func (d *Driver) commit(index int, days float64, results []bodyResult) Frame {
	jd := epoch.JulianDate(days)
	frame := Frame{
		Index:       index,
		ElapsedDays: days,
		JulianDate:  jd,
		Date:        epoch.CalendarFromJD(jd),
		Bodies:      make([]BodySample, 0, len(d.bodies)),
	}
	for i, r := range results {
		name := d.bodies[i].Name()
		if r.err != nil {
			frame.Skipped = append(frame.Skipped, name)
			d.metrics.Failures.WithLabelValues(name).Inc()
			d.logger.Warn("skipping body update", "body", name, "frame", index, "elapsed_days", days, "err", r.err)
			continue
		}
		d.metrics.Propagations.WithLabelValues(name).Inc()
		d.trails[i].Push(r.pos)
		frame.Bodies = append(frame.Bodies, BodySample{Name: name, Position: r.pos})
	}
	return frame
}

// evaluateParallel fans bodies out over a fixed worker pool. Each result is written to its
// own slot so output order never depends on scheduling.
func (d *Driver) evaluateParallel(ctx context.Context, days float64, results []bodyResult) {
	jobs := make(chan int, len(d.bodies))
	for i := range d.bodies {
		jobs <- i
	}
	close(jobs)

	workers := d.workers
	if workers > len(d.bodies) {
		workers = len(d.bodies)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					results[i] = bodyResult{err: err}
					continue
				}
				pos, err := d.propagator.ComputePosition(d.bodies[i], days)
				results[i] = bodyResult{pos: pos, err: err}
			}
		}()
	}
	wg.Wait()
}

// RunConfig controls an offline or paced run.
type RunConfig struct {
	Frames        int
	FrameInterval time.Duration
	// SnapshotEvery writes every Nth frame to the sink; the last frame is always written.
	SnapshotEvery int
	// Realtime paces frames with a ticker instead of stepping as fast as possible.
	Realtime bool
	// SpeedChanges maps a frame number to the speed applied just before that frame.
	SpeedChanges map[int]float64
}

// Run steps cfg.Frames frames of cfg.FrameInterval each and streams sampled frames to sink.
// It returns the last frame.
func (d *Driver) Run(ctx context.Context, cfg RunConfig, sink SnapshotSink) (Frame, error) {
	if cfg.Frames <= 0 {
		return Frame{}, fmt.Errorf("frames must be positive, got %d", cfg.Frames)
	}
	if cfg.FrameInterval <= 0 {
		return Frame{}, fmt.Errorf("frame interval must be positive, got %s", cfg.FrameInterval)
	}
	every := cfg.SnapshotEvery
	if every <= 0 {
		every = 1
	}
	for frame, speed := range cfg.SpeedChanges {
		if err := ValidateSpeed(speed); err != nil {
			return Frame{}, fmt.Errorf("speed change at frame %d: %w", frame, err)
		}
	}

	if sink != nil {
		info := RunInfo{
			RunID:         d.runID,
			Bodies:        d.names(),
			Speed:         d.clock.Speed(),
			FrameInterval: cfg.FrameInterval.Seconds(),
			SnapshotEvery: every,
		}
		if err := sink.OnStart(info); err != nil {
			return Frame{}, fmt.Errorf("snapshot sink start: %w", err)
		}
	}

	var ticker *time.Ticker
	if cfg.Realtime {
		ticker = time.NewTicker(cfg.FrameInterval)
		defer ticker.Stop()
	}

	d.logger.Info("simulation started", "frames", cfg.Frames, "bodies", len(d.bodies), "speed", d.clock.Speed())

	var last Frame
	for i := 1; i <= cfg.Frames; i++ {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return last, ctx.Err()
			case <-ticker.C:
			}
		}

		if speed, ok := cfg.SpeedChanges[i]; ok {
			if err := d.SetSpeed(speed); err != nil {
				return last, err
			}
		}

		frame, err := d.Step(ctx, cfg.FrameInterval)
		if err != nil {
			return last, err
		}
		last = frame

		if sink != nil && (i%every == 0 || i == cfg.Frames) {
			if err := sink.OnSnapshot(frame); err != nil {
				return last, fmt.Errorf("snapshot frame %d: %w", frame.Index, err)
			}
		}
		if len(frame.Skipped) > 0 {
			d.logger.Debug("frame completed with skipped bodies", "frame", frame.Index, "skipped", frame.Skipped)
		}
	}

	if sink != nil {
		if err := sink.OnEnd(last); err != nil {
			return last, fmt.Errorf("snapshot sink end: %w", err)
		}
	}
	d.logger.Info("simulation finished", "elapsed_days", last.ElapsedDays, "date", last.Date.String())
	return last, nil
}

func (d *Driver) names() []string {
	names := make([]string, len(d.bodies))
	for i, b := range d.bodies {
		names[i] = b.Name()
	}
	return names
}
