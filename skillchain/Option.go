// Package skillchain implements options, each an independent
// action-value learner with its own experience and logs, and the
// chain that manages them
package skillchain

import (
	"fmt"

	"github.com/samuelfneumann/skillchain/agent/deepq"
	"github.com/samuelfneumann/skillchain/experiment/tracker"
	"github.com/samuelfneumann/skillchain/expreplay"
	"github.com/samuelfneumann/skillchain/timestep"
)

// Option is a single learner in a skill chain
type Option struct {
	ID     int
	Born   int // Episode the option was created at
	Q      *deepq.DeepQ
	Replay *expreplay.Buffer
	Board  *tracker.Board
}

// NewOption returns a new Option
func NewOption(id, born int, q *deepq.DeepQ, replay *expreplay.Buffer,
	board *tracker.Board) (*Option, error) {
	if q == nil || replay == nil || board == nil {
		return nil, fmt.Errorf("newOption: option %v needs an action-value "+
			"function, a replay buffer and a board", id)
	}
	if replay.Capacity() < q.BatchSize() {
		return nil, fmt.Errorf("newOption: replay capacity %v cannot hold "+
			"a minibatch of %v", replay.Capacity(), q.BatchSize())
	}
	return &Option{ID: id, Born: born, Q: q, Replay: replay, Board: board}, nil
}

// Age returns the number of episodes the option has existed for at
// the start of episode
func (o *Option) Age(episode int) int {
	return episode - o.Born
}

// Record adds a transition to the option's experience
func (o *Option) Record(t timestep.Transition) error {
	if err := o.Replay.Add(t); err != nil {
		return fmt.Errorf("record: option %v: %w", o.ID, err)
	}
	return nil
}

// Ready returns whether the option has enough experience to learn
func (o *Option) Ready() bool {
	return o.Replay.Len() >= o.Q.BatchSize()
}

// Learn samples a minibatch from the option's experience and performs
// one learning update with it, returning the loss
func (o *Option) Learn() (float64, error) {
	batch, err := o.Replay.Sample(o.Q.BatchSize())
	if err != nil {
		return 0, fmt.Errorf("learn: option %v: %w", o.ID, err)
	}

	loss, err := o.Q.Learn(batch)
	if err != nil {
		return 0, fmt.Errorf("learn: option %v: %w", o.ID, err)
	}
	return loss, nil
}

func (o *Option) String() string {
	return fmt.Sprintf("Option %v | Born: %v | Experience: %v | Board: %v",
		o.ID, o.Born, o.Replay.Len(), o.Board.Dir())
}
