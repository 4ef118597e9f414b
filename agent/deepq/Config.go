package deepq

import (
	"fmt"

	"github.com/samuelfneumann/skillchain/initwfn"
	"github.com/samuelfneumann/skillchain/network"
	"github.com/samuelfneumann/skillchain/solver"
)

// Config implements a configuration for a DeepQ action-value function
type Config struct {
	HiddenSizes []int           // Layer sizes in neural net
	Activations []string        // Activation of each hidden layer
	InitWFn     initwfn.InitWFn // Initialization of non-bias weights
	Solver      solver.Config   // Solver for learning weights
	Gamma       float64         // Discount factor
	L2          float64         // L2 regularization of non-bias weights
	Dropout     float64         // Dropout probability while training
	BatchSize   int             // Transitions per learning update
}

// Validate checks a Config to ensure it is a valid configuration of a
// DeepQ action-value function.
func (c Config) Validate() error {
	if len(c.HiddenSizes) != len(c.Activations) {
		return fmt.Errorf("validate: invalid number of activations"+
			"\n\twant(%v)\n\thave(%v)", len(c.HiddenSizes), len(c.Activations))
	}
	for i, size := range c.HiddenSizes {
		if size < 1 {
			return fmt.Errorf("validate: hidden layer %v must have at least "+
				"one unit, got %v", i, size)
		}
	}
	if _, err := c.activations(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if err := c.InitWFn.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("validate: gamma must be in [0, 1], got %v", c.Gamma)
	}
	if c.L2 < 0 {
		return fmt.Errorf("validate: l2 must be >= 0, got %v", c.L2)
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return fmt.Errorf("validate: dropout must be in [0, 1), got %v",
			c.Dropout)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("validate: batch size must be >= 1, got %v",
			c.BatchSize)
	}
	return nil
}

func (c Config) activations() ([]*network.Activation, error) {
	acts := make([]*network.Activation, len(c.Activations))
	for i, name := range c.Activations {
		act, err := network.ParseActivation(name)
		if err != nil {
			return nil, err
		}
		acts[i] = act
	}
	return acts, nil
}

// ReLUs returns n "relu" activation names
func ReLUs(n int) []string {
	acts := make([]string, n)
	for i := range acts {
		acts[i] = "relu"
	}
	return acts
}
