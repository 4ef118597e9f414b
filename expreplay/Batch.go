package expreplay

import "gonum.org/v1/gonum/mat"

// Batch is a minibatch of transitions. Row i of States and NextStates
// and element i of every slice belong to the same transition.
type Batch struct {
	States        *mat.Dense
	Actions       []int
	Rewards       []float64
	NextStates    *mat.Dense
	Continuations []float64
}

// Len returns the number of transitions in the batch
func (b Batch) Len() int {
	return len(b.Actions)
}
