// Package expreplay implements a fixed-capacity experience replay
// buffer of transitions
package expreplay

import (
	"fmt"

	"github.com/gammazero/deque"
	"github.com/samuelfneumann/skillchain/timestep"
	"gonum.org/v1/gonum/mat"
)

// Config implements a specific configuration of a Buffer
type Config struct {
	SampleMethod SelectorType
	SampleSize   int
	Capacity     int
}

// Create creates and returns the Buffer with the specified Config
func (c Config) Create(seed uint64) (*Buffer, error) {
	sampler, err := CreateSelector(c.SampleMethod, seed)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	if c.SampleSize <= 0 {
		return nil, fmt.Errorf("create: sample size must be > 0")
	}
	return New(sampler, c.Capacity)
}

// Buffer stores the most recent transitions up to its capacity. When
// full, adding a transition evicts the oldest one.
type Buffer struct {
	data        *deque.Deque[timestep.Transition]
	capacity    int
	featureSize int
	sampler     Selector
}

// New creates and returns a new Buffer with the given capacity. The
// sampler determines which transitions are returned by Sample.
func New(sampler Selector, capacity int) (*Buffer, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("new: capacity must be >= 1")
	}

	return &Buffer{
		data:     deque.New[timestep.Transition](),
		capacity: capacity,
		sampler:  sampler,
	}, nil
}

// Add adds a transition to the buffer, evicting the oldest transition
// if the buffer is full. All transitions in a buffer must have states
// of the same size.
func (b *Buffer) Add(t timestep.Transition) error {
	if t.State.Len() != t.NextState.Len() {
		return fmt.Errorf("add: state and next state sizes differ "+
			"\n\tstate(%v)\n\tnext state(%v)", t.State.Len(),
			t.NextState.Len())
	}
	if b.data.Len() == 0 && b.featureSize == 0 {
		b.featureSize = t.State.Len()
	} else if t.State.Len() != b.featureSize {
		return fmt.Errorf("add: invalid feature size \n\twant(%v)\n\thave(%v)",
			b.featureSize, t.State.Len())
	}

	if b.data.Len() >= b.capacity {
		b.data.PopFront()
	}
	b.data.PushBack(t)
	return nil
}

// Len returns the number of transitions in the buffer
func (b *Buffer) Len() int {
	return b.data.Len()
}

// Capacity returns the maximum number of transitions in the buffer
func (b *Buffer) Capacity() int {
	return b.capacity
}

// At returns the i-th oldest transition in the buffer
func (b *Buffer) At(i int) timestep.Transition {
	return b.data.At(i)
}

// Sample returns n distinct transitions chosen by the buffer's
// Selector
func (b *Buffer) Sample(n int) (Batch, error) {
	if n <= 0 {
		return Batch{}, fmt.Errorf("sample: cannot sample %v transitions", n)
	}
	if b.Len() == 0 {
		return Batch{}, &ExpReplayError{Op: "sample", Err: errEmptyCache}
	}
	if b.Len() < n {
		return Batch{}, &ExpReplayError{
			Op: "sample",
			Err: fmt.Errorf("%w: requested %v, have %v",
				errInsufficientSamples, n, b.Len()),
		}
	}

	indices := b.sampler.choose(n, b.Len())
	batch := Batch{
		States:        mat.NewDense(n, b.featureSize, nil),
		Actions:       make([]int, n),
		Rewards:       make([]float64, n),
		NextStates:    mat.NewDense(n, b.featureSize, nil),
		Continuations: make([]float64, n),
	}
	for row, index := range indices {
		t := b.data.At(index)
		batch.States.SetRow(row, t.State.RawVector().Data)
		batch.NextStates.SetRow(row, t.NextState.RawVector().Data)
		batch.Actions[row] = t.Action
		batch.Rewards[row] = t.Reward
		batch.Continuations[row] = t.Continuation
	}
	return batch, nil
}

func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer | Len: %v  |  Capacity: %v", b.Len(),
		b.capacity)
}
