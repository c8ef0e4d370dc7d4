package math

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestVectorArithmetic(t *testing.T) {
	a := Vector3{X: 1, Y: 2, Z: 2}
	b := Vector3{X: 1, Y: 0, Z: 0}

	assert.Equal(t, 3.0, a.Magnitude())
	assert.Equal(t, Vector3{X: 0, Y: 2, Z: 2}, a.Sub(b))
	assert.InDelta(t, math.Sqrt(8), a.Distance(b), 1e-15)
	assert.Equal(t, 0.0, a.Distance(a))
}

func TestSceneYUp(t *testing.T) {
	v := Vector3{X: 1, Y: 2, Z: 3}
	assert.Equal(t, Vector3{X: 1, Y: 3, Z: 2}, v.SceneYUp())
	assert.Equal(t, v, v.SceneYUp().SceneYUp())
	assert.Equal(t, v.Magnitude(), v.SceneYUp().Magnitude())
}

func TestVecDenseConversion(t *testing.T) {
	v := Vector3{X: -0.5, Y: 4, Z: 1e-3}
	d := v.VecDense()
	assert.Equal(t, 3, d.Len())
	assert.Equal(t, v, FromVecDense(d))

	var scaled mat.VecDense
	scaled.ScaleVec(2, d)
	assert.Equal(t, Vector3{X: -1, Y: 8, Z: 2e-3}, FromVecDense(&scaled))
}
