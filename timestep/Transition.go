package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Transition is a single (s, a, r, s', c) tuple. The continuation
// flag c is 0 if s' is terminal and 1 otherwise, so that it zeroes the
// discounted future value of a terminal next state.
//
// A Transition owns copies of its state vectors, so it is not affected
// by later changes to the TimeSteps it was created from.
type Transition struct {
	State        *mat.VecDense
	Action       int
	Reward       float64
	NextState    *mat.VecDense
	Continuation float64
}

// NewTransition creates a Transition from the TimeStep an action was
// taken in and the TimeStep that followed.
func NewTransition(step TimeStep, action int, next TimeStep) Transition {
	continuation := 1.0
	if next.Last() {
		continuation = 0.0
	}

	return Transition{
		State:        mat.VecDenseCopyOf(step.Observation),
		Action:       action,
		Reward:       next.Reward,
		NextState:    mat.VecDenseCopyOf(next.Observation),
		Continuation: continuation,
	}
}

// Terminal returns whether the next state of the transition is
// terminal
func (t Transition) Terminal() bool {
	return t.Continuation == 0.0
}

func (t Transition) String() string {
	return fmt.Sprintf("Transition | Action: %v  |  Reward: %.3f  |  "+
		"Continuation: %v", t.Action, t.Reward, t.Continuation)
}
