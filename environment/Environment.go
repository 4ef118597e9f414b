// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"errors"

	"github.com/samuelfneumann/skillchain/timestep"
	"gonum.org/v1/gonum/mat"
)

// ErrIllegalAction is returned when an environment is stepped with an
// action outside of its action specification
var ErrIllegalAction = errors.New("illegal action")

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when episodes end. If an episode should end, End
// modifies the TimeStep so that it is the last in the episode and
// records the way in which the episode ended.
type Ender interface {
	End(*timestep.TimeStep) bool
}

// Task implements the reward scheme and episode termination of some
// environment
type Task interface {
	Starter
	Ender
	GetReward(state, action, nextState mat.Vector) float64
}

// Environment implements a simulated environment. Environments are
// stepped synchronously by a single caller.
type Environment interface {
	// Reset resets the environment between episodes and returns the
	// first TimeStep of the new episode
	Reset() (timestep.TimeStep, error)

	// Step takes a single environmental step, returning the next
	// TimeStep and whether it is the last in the episode
	Step(action *mat.VecDense) (timestep.TimeStep, bool, error)

	CurrentTimeStep() timestep.TimeStep
	ObservationSpec() Spec
	ActionSpec() Spec
	DiscountSpec() Spec
	Close() error
}

// Renderer is an Environment that can render its current state
type Renderer interface {
	Environment
	Render() error
}

// NumActions returns the number of discrete actions of an environment
// whose actions are enumerated from 0.
func NumActions(e Environment) (int, error) {
	spec := e.ActionSpec()
	if spec.Cardinality != Discrete {
		return 0, errors.New("numActions: actions are not discrete")
	}
	if spec.LowerBound.Len() != 1 {
		return 0, errors.New("numActions: actions must be 1-dimensional")
	}
	if spec.LowerBound.AtVec(0) != 0.0 {
		return 0, errors.New("numActions: actions must be enumerated " +
			"starting from 0")
	}
	return int(spec.UpperBound.AtVec(0)) + 1, nil
}

// NumFeatures returns the length of observation vectors of an
// environment
func NumFeatures(e Environment) int {
	return e.ObservationSpec().Len()
}
