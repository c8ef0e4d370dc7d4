package orbital

import (
	"math"

	"gonum.org/v1/gonum/mat"

	astromath "github.com/oxygene76/orrery/pkg/astronomy/math"
)

// RadiusAt returns the focal distance r = a(1-e²)/(1+e·cosθ) in AU.
func (oe *OrbitalElements) RadiusAt(trueAnomaly float64) float64 {
	e := oe.eccentricity
	return oe.semiMajorAxis * (1 - e*e) / (1 + e*math.Cos(trueAnomaly))
}

// PositionAtTrueAnomaly places the body on its ellipse at θ and rotates the point from
// the orbital plane into the ecliptic frame.
func (oe *OrbitalElements) PositionAtTrueAnomaly(trueAnomaly float64) astromath.Vector3 {
	r := oe.RadiusAt(trueAnomaly)
	sinT, cosT := math.Sincos(trueAnomaly)

	orb := mat.NewVecDense(3, []float64{r * cosT, r * sinT, 0})
	var out mat.VecDense
	out.MulVec(oe.rotation, orb)
	return astromath.FromVecDense(&out)
}

// RotationMatrix returns a copy of the orbital-plane-to-ecliptic rotation.
func (oe *OrbitalElements) RotationMatrix() *mat.Dense {
	return mat.DenseCopyOf(oe.rotation)
}

// orbitalPlaneRotation composes Rz(Ω)·Rx(i)·Rz(ω). Applied to a column vector this rotates
// by ω in the orbital plane first, then tilts by i about the line of nodes, then turns the
// node by Ω about the ecliptic pole.
func orbitalPlaneRotation(ascendingNode, inclination, argPeriapsis float64) *mat.Dense {
	var tilt, r mat.Dense
	tilt.Mul(rotationX(inclination), rotationZ(argPeriapsis))
	r.Mul(rotationZ(ascendingNode), &tilt)
	return &r
}

func rotationZ(angle float64) *mat.Dense {
	s, c := math.Sincos(angle)
	return mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}

func rotationX(angle float64) *mat.Dense {
	s, c := math.Sincos(angle)
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	})
}
