package math

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Vector3 is a heliocentric ecliptic position in AU
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FromVecDense copies the first three components of a gonum column vector
func FromVecDense(v *mat.VecDense) Vector3 {
	return Vector3{X: v.AtVec(0), Y: v.AtVec(1), Z: v.AtVec(2)}
}

// VecDense returns the vector as a gonum column vector
func (v Vector3) VecDense() *mat.VecDense {
	return mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
}

// Sub returns the difference between two vectors
func (v Vector3) Sub(other Vector3) Vector3 {
	return Vector3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Magnitude returns the length of the vector
func (v Vector3) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns the distance between two vectors
func (v Vector3) Distance(other Vector3) float64 {
	return v.Sub(other).Magnitude()
}

// SceneYUp swaps Y and Z so the ecliptic lies in the XZ plane of a y-up renderer.
func (v Vector3) SceneYUp() Vector3 {
	return Vector3{X: v.X, Y: v.Z, Z: v.Y}
}
