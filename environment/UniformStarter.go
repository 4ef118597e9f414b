package environment

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// UniformStarter is a Starter drawing each feature of the starting
// state uniformly from its own interval
type UniformStarter struct {
	dist *distmv.Uniform
}

// NewUniformStarter returns a UniformStarter drawing feature i from
// bounds[i]
func NewUniformStarter(bounds []r1.Interval, seed uint64) UniformStarter {
	return UniformStarter{
		dist: distmv.NewUniform(bounds, rand.NewSource(seed)),
	}
}

// Start draws a starting state
func (u UniformStarter) Start() *mat.VecDense {
	return mat.NewVecDense(u.dist.Dim(), u.dist.Rand(nil))
}
