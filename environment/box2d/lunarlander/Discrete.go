package lunarlander

import (
	"fmt"

	"github.com/samuelfneumann/skillchain/environment"
	"github.com/samuelfneumann/skillchain/timestep"
	"gonum.org/v1/gonum/mat"
)

// Discrete actions
const (
	Noop int = iota
	FireLeft
	FireMain
	FireRight
)

// Discrete implements the lunar lander environment with discrete
// actions. An agent flies a ship within a bounded viewport above the
// moon and tries to land it on a flat landing pad between two flags.
//
// State observations are vectors consisting of the following features
// in the following order:
//
//	1. The x distance from the lander to the center of the viewport,
//	   in [-1, 1]
//	2. The y distance from the lander's legs to the landing pad in
//	   units of the distance from the pad to the top of the viewport
//	3. The x velocity of the lander
//	4. The y velocity of the lander
//	5. The angle of the lander, wrapped into [-π, π)
//	6. The angular velocity of the lander
//	7. Whether the left leg has contact with the ground, in {0, 1}
//	8. Whether the right leg has contact with the ground, in {0, 1}
//
// A boundary is placed around the viewport so that the lander cannot
// leave it, which bounds the position features.
//
// Actions are 1-dimensional and take values in {0, 1, 2, 3}: do
// nothing, fire the left orientation engine, fire the main engine, or
// fire the right orientation engine.
//
// The Task's Starter must return vectors of StartDims elements: the
// starting x position in [0.05, 0.95] * (ViewportW / Scale), the
// starting y position in [ViewportH / Scale / 2, InitialY] and the
// magnitude of the random force applied at the start.
type Discrete struct {
	*lunarLander
}

// NewDiscrete returns a new lunar lander environment with discrete
// actions and the first TimeStep of its first episode
func NewDiscrete(task Task, discount float64,
	seed uint64) (*Discrete, timestep.TimeStep, error) {
	l, step, err := newLunarLander(task, discount, seed)
	if err != nil {
		return nil, timestep.TimeStep{}, fmt.Errorf("newDiscrete: %w", err)
	}
	return &Discrete{l}, step, nil
}

// ActionSpec returns the action specification of the environment
func (d *Discrete) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{float64(MinDiscreteAction)})
	upperBound := mat.NewVecDense(1, []float64{float64(MaxDiscreteAction)})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Discrete)
}

// Step takes one environmental step with a discrete action
func (d *Discrete) Step(action *mat.VecDense) (timestep.TimeStep, bool,
	error) {
	if !d.ActionSpec().Contains(action) {
		return timestep.TimeStep{}, false, fmt.Errorf("step: %w: expected "+
			"a single action ϵ [0, 1, 2, 3], received %v",
			environment.ErrIllegalAction, mat.Formatted(action.T()))
	}

	var engines []float64
	switch int(action.AtVec(0)) {
	case FireLeft:
		engines = []float64{0.0, -1.0}
	case FireMain:
		engines = []float64{1.0, 0.0}
	case FireRight:
		engines = []float64{0.0, 1.0}
	default:
		engines = []float64{0.0, 0.0}
	}

	step, last := d.lunarLander.step(mat.NewVecDense(2, engines))
	return step, last, nil
}
