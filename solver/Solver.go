// Package solver wraps Gorgonia Solvers in configurations that can be
// read from configuration files.
package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Type describes different types of solvers that are available
type Type string

// Available solver types
const (
	Adam    Type = "Adam"
	RMSProp Type = "RMSProp"
	Vanilla Type = "Vanilla"
)

// Config describes a Gorgonia Solver. Beta1 and Beta2 are read only by
// Adam and Rho only by RMSProp. Batch scales gradients by 1/Batch and
// should be 1 when the loss is already a mean over the batch.
type Config struct {
	Type     Type    `mapstructure:"type"`
	StepSize float64 `mapstructure:"step_size"`
	Epsilon  float64 `mapstructure:"epsilon"`
	Beta1    float64 `mapstructure:"beta1"`
	Beta2    float64 `mapstructure:"beta2"`
	Rho      float64 `mapstructure:"rho"`
	Batch    int     `mapstructure:"batch"`
	Clip     float64 `mapstructure:"clip"` // <= 0 if no clipping
}

// NewDefaultAdam returns the configuration of an Adam Solver with
// default hyperparameters
func NewDefaultAdam(stepSize float64) Config {
	return Config{
		Type:     Adam,
		StepSize: stepSize,
		Epsilon:  1e-8,
		Beta1:    0.9,
		Beta2:    0.999,
		Batch:    1,
	}
}

// NewDefaultRMSProp returns the configuration of an RMSProp Solver
// with default hyperparameters
func NewDefaultRMSProp(stepSize float64) Config {
	return Config{
		Type:     RMSProp,
		StepSize: stepSize,
		Epsilon:  1e-8,
		Rho:      0.999,
		Batch:    1,
	}
}

// NewVanilla returns the configuration of a vanilla gradient descent
// Solver
func NewVanilla(stepSize float64) Config {
	return Config{Type: Vanilla, StepSize: stepSize, Batch: 1}
}

// Validate returns an error if the Solver cannot be created
func (c Config) Validate() error {
	switch c.Type {
	case Adam, RMSProp, Vanilla:
	default:
		return fmt.Errorf("validate: no such solver %q", c.Type)
	}
	if c.StepSize <= 0 {
		return fmt.Errorf("validate: step size must be > 0, got %v",
			c.StepSize)
	}
	if c.Batch < 1 {
		return fmt.Errorf("validate: batch must be >= 1, got %v", c.Batch)
	}
	return nil
}

// Create returns the Gorgonia Solver described by the Config
func (c Config) Create() (G.Solver, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	opts := []G.SolverOpt{
		G.WithLearnRate(c.StepSize),
		G.WithBatchSize(float64(c.Batch)),
	}
	if c.Clip > 0 {
		opts = append(opts, G.WithClip(c.Clip))
	}

	switch c.Type {
	case Adam:
		opts = append(opts, G.WithEps(c.Epsilon), G.WithBeta1(c.Beta1),
			G.WithBeta2(c.Beta2))
		return G.NewAdamSolver(opts...), nil

	case RMSProp:
		opts = append(opts, G.WithEps(c.Epsilon), G.WithRho(c.Rho))
		return G.NewRMSPropSolver(opts...), nil

	default:
		return G.NewVanillaSolver(opts...), nil
	}
}
