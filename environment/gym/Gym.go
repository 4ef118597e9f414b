//go:build gogym

// Package gym runs OpenAI Gym's LunarLander-v2 through the GoGym
// bindings (https://github.com/samuelfneumann/GoGym) as an
// environment.Environment.
package gym

import (
	"fmt"

	"github.com/samuelfneumann/gogym"
	env "github.com/samuelfneumann/skillchain/environment"
	ts "github.com/samuelfneumann/skillchain/timestep"
	"gonum.org/v1/gonum/mat"
)

// LunarLanderV2 is the Gym name of Lunar Lander with discrete actions
const LunarLanderV2 = "LunarLander-v2"

// Env is a Gym environment. Episodes end when Gym reports them done
// or when the optional step limit is reached, whichever comes first.
type Env struct {
	gym      gogym.Environment
	discount float64
	limit    env.Ender

	obsSpec    env.Spec
	actionSpec env.Spec

	current ts.TimeStep
}

// New creates the Gym environment called name. If cutoff > 0,
// episodes are also cut off after cutoff steps.
func New(name string, discount float64, cutoff int, seed uint64) (*Env,
	ts.TimeStep, error) {
	g, err := gogym.Make(name)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: could not make %v: %w",
			name, err)
	}
	g.Seed(int(seed))

	e, first, err := wrap(g, discount, cutoff)
	if err != nil {
		g.Close()
		return nil, ts.TimeStep{}, fmt.Errorf("new: %w", err)
	}
	return e, first, nil
}

func wrap(g gogym.Environment, discount float64, cutoff int) (*Env,
	ts.TimeStep, error) {
	obsSpec, err := spaceToSpec(g.ObservationSpace(), env.Observation)
	if err != nil {
		return nil, ts.TimeStep{}, err
	}
	actionSpec, err := spaceToSpec(g.ActionSpace(), env.Action)
	if err != nil {
		return nil, ts.TimeStep{}, err
	}

	e := &Env{
		gym:        g,
		discount:   discount,
		obsSpec:    obsSpec,
		actionSpec: actionSpec,
	}
	if cutoff > 0 {
		e.limit = env.NewStepLimit(cutoff)
	}

	first, err := e.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, err
	}
	return e, first, nil
}

// Step takes action a, returning the resulting TimeStep and whether
// the episode ended
func (e *Env) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if !e.actionSpec.Contains(a) {
		return ts.TimeStep{}, true, fmt.Errorf("step: illegal action %v",
			mat.Formatted(a.T()))
	}

	obs, reward, done, err := e.gym.Step(a)
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: %w", err)
	}

	t := ts.New(ts.Mid, reward, e.discount, obs, e.current.Number+1)
	if done {
		t.StepType = ts.Last
		t.SetEnd(ts.TerminalStateReached)
	} else if e.limit != nil {
		e.limit.End(&t)
	}
	e.current = t
	return t, t.Last(), nil
}

// Reset starts a new episode
func (e *Env) Reset() (ts.TimeStep, error) {
	obs, err := e.gym.Reset()
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
	}
	e.current = ts.New(ts.First, 0, e.discount, obs, 0)
	return e.current, nil
}

// CurrentTimeStep returns the most recent TimeStep
func (e *Env) CurrentTimeStep() ts.TimeStep {
	return e.current
}

// ObservationSpec returns the specification of observations
func (e *Env) ObservationSpec() env.Spec {
	return e.obsSpec
}

// ActionSpec returns the specification of actions
func (e *Env) ActionSpec() env.Spec {
	return e.actionSpec
}

// DiscountSpec returns the constant discount of the environment
func (e *Env) DiscountSpec() env.Spec {
	d := mat.NewVecDense(1, []float64{e.discount})
	return env.NewSpec(mat.NewVecDense(1, nil), env.Discount, d, d,
		env.Continuous)
}

// Close closes the Gym environment
func (e *Env) Close() error {
	e.gym.Close()
	return nil
}

type boundedSpace interface {
	Low() []*mat.VecDense
	High() []*mat.VecDense
}

func spaceToSpec(space boundedSpace, t env.SpecType) (env.Spec, error) {
	var cardinality env.Cardinality
	switch space.(type) {
	case *gogym.BoxSpace:
		cardinality = env.Continuous
	case *gogym.DiscreteSpace:
		cardinality = env.Discrete
	default:
		return env.Spec{}, fmt.Errorf("spaceToSpec: unsupported %v space "+
			"%T", t, space)
	}

	low, high := space.Low()[0], space.High()[0]
	return env.NewSpec(mat.NewVecDense(low.Len(), nil), t, low, high,
		cardinality), nil
}
