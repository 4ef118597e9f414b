// Package policy implements ε-greedy action selection over learned
// action values
package policy

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/skillchain/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Valuer predicts the value of each action in a single observation
type Valuer interface {
	ActionValues(obs *mat.VecDense) ([]float64, error)
}

// EGreedy implements an ε-greedy policy. With probability ε an action
// is chosen uniformly at random, otherwise the action with the
// highest value is chosen. Ties are broken in favour of the lowest
// action index.
type EGreedy struct {
	schedule   *Schedule
	numActions int

	coin   distuv.Uniform
	action distuv.Uniform
}

// NewEGreedy returns a new EGreedy policy over numActions actions
// whose ε follows schedule
func NewEGreedy(schedule *Schedule, numActions int, seed uint64) (*EGreedy,
	error) {
	if numActions < 1 {
		return nil, fmt.Errorf("newEGreedy: need at least one action, "+
			"got %v", numActions)
	}

	src := rand.NewSource(seed)
	return &EGreedy{
		schedule:   schedule,
		numActions: numActions,
		coin:       distuv.Uniform{Min: 0, Max: 1, Src: src},
		action:     distuv.Uniform{Min: 0, Max: float64(numActions), Src: src},
	}, nil
}

// Epsilon returns the current ε
func (e *EGreedy) Epsilon() float64 {
	return e.schedule.Epsilon()
}

// Schedule returns the ε Schedule of the policy
func (e *EGreedy) Schedule() *Schedule {
	return e.schedule
}

// SelectAction selects an action in obs. The valuer is only run when
// the greedy action is needed.
func (e *EGreedy) SelectAction(obs *mat.VecDense, valuer Valuer) (int,
	error) {
	if e.coin.Rand() < e.schedule.Epsilon() {
		a := int(e.action.Rand())
		if a >= e.numActions {
			a = e.numActions - 1
		}
		return a, nil
	}
	return Greedy(obs, valuer)
}

// Greedy returns the action with the highest value in obs, preferring
// lower action indices on ties
func Greedy(obs *mat.VecDense, valuer Valuer) (int, error) {
	values, err := valuer.ActionValues(obs)
	if err != nil {
		return 0, fmt.Errorf("greedy: %w", err)
	}
	return floatutils.Argmax(values), nil
}
