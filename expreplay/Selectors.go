package expreplay

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/sampleuv"
)

// SelectorType determines how transitions are chosen from a buffer
type SelectorType string

const (
	Uniform SelectorType = "Uniform"
	Fifo    SelectorType = "Fifo"
)

// Selector implements functionality for choosing which transitions
// are sampled from an experience replay buffer
type Selector interface {
	// choose selects n distinct positions, counted from the oldest, of a
	// buffer holding size transitions. Callers guarantee n <= size.
	choose(n, size int) []int
}

// CreateSelector is a factory for Selectors
func CreateSelector(t SelectorType, seed uint64) (Selector, error) {
	switch t {
	case Uniform:
		return NewUniformSelector(seed), nil
	case Fifo:
		return NewFifoSelector(), nil
	}
	return nil, fmt.Errorf("createSelector: no such selector %q", t)
}

// uniformSelector is a Selector which selects transitions uniformly
// randomly without replacement
type uniformSelector struct {
	src rand.Source
}

// NewUniformSelector returns a new Selector which selects data uniformly
// randomly from an experience replay buffer, without replacement
func NewUniformSelector(seed uint64) Selector {
	return &uniformSelector{src: rand.NewSource(seed)}
}

func (u *uniformSelector) choose(n, size int) []int {
	selected := make([]int, n)
	sampleuv.WithoutReplacement(selected, size, u.src)
	return selected
}

// fifoSelector is a Selector which selects the oldest transitions in
// an experience replay buffer
type fifoSelector struct{}

// NewFifoSelector returns a new Selector which selects the oldest
// transitions of an experience replay buffer
func NewFifoSelector() Selector {
	return fifoSelector{}
}

func (fifoSelector) choose(n, _ int) []int {
	selected := make([]int, n)
	for i := range selected {
		selected[i] = i
	}
	return selected
}
