package simulation

import (
	astromath "github.com/oxygene76/orrery/pkg/astronomy/math"
)

// DefaultTrailLength is the number of recent positions kept per body.
const DefaultTrailLength = 1000

// Trail is a fixed-capacity ring of the most recent positions of one body.
type Trail struct {
	points []astromath.Vector3
	start  int
	size   int
}

// NewTrail returns an empty trail holding at most capacity points.
func NewTrail(capacity int) *Trail {
	if capacity <= 0 {
		capacity = DefaultTrailLength
	}
	return &Trail{points: make([]astromath.Vector3, capacity)}
}

// Push appends p, dropping the oldest point when full.
func (t *Trail) Push(p astromath.Vector3) {
	if t.size < len(t.points) {
		t.points[(t.start+t.size)%len(t.points)] = p
		t.size++
		return
	}
	t.points[t.start] = p
	t.start = (t.start + 1) % len(t.points)
}

// Len returns the number of stored points
func (t *Trail) Len() int { return t.size }

// Cap returns the trail capacity
func (t *Trail) Cap() int { return len(t.points) }

// Reset discards every point.
func (t *Trail) Reset() {
	t.start = 0
	t.size = 0
}

// Points returns the stored positions, oldest first.
func (t *Trail) Points() []astromath.Vector3 {
	out := make([]astromath.Vector3, t.size)
	for i := 0; i < t.size; i++ {
		out[i] = t.points[(t.start+i)%len(t.points)]
	}
	return out
}
