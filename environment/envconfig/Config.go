// Package envconfig provides configuration structs for creating
// Lunar Lander environments by backend name.
package envconfig

import (
	"fmt"
	"sort"

	env "github.com/samuelfneumann/skillchain/environment"
	"github.com/samuelfneumann/skillchain/environment/box2d/lunarlander"
	ts "github.com/samuelfneumann/skillchain/timestep"
)

// EnvName stores the name of environment backends that can be
// configured with this package
type EnvName string

// Environment backends
const (
	Box2D EnvName = "box2d"
	Gym   EnvName = "gym"
)

// DefaultCutoff is the episode cutoff of Lunar Lander in OpenAI Gym
const DefaultCutoff = 1000

// Factory creates an environment and returns its first timestep
type Factory func(c Config) (env.Environment, ts.TimeStep, error)

var factories = map[EnvName]Factory{
	Box2D: CreateBox2D,
}

// Register makes a factory available under name
func Register(name EnvName, f Factory) {
	factories[name] = f
}

// Available returns the names of all registered backends
func Available() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

// Config implements a specific configuration of Lunar Lander with
// discrete actions
type Config struct {
	Environment   EnvName
	EpisodeCutoff int
	Discount      float64
	Seed          uint64
	FrameDir      string // Directory rendered frames are saved in
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment.
func (c Config) Create() (env.Environment, ts.TimeStep, error) {
	f, ok := factories[c.Environment]
	if !ok {
		return nil, ts.TimeStep{}, fmt.Errorf("create: cannot create "+
			"environment %q, available environments are %v", c.Environment,
			Available())
	}
	return f(c)
}

// CreateBox2D creates Lunar Lander on the Box2D physics engine with
// the Land task and default starting states
func CreateBox2D(c Config) (env.Environment, ts.TimeStep, error) {
	cutoff := c.EpisodeCutoff
	if cutoff <= 0 {
		cutoff = DefaultCutoff
	}

	task := lunarlander.NewLand(lunarlander.NewStarter(c.Seed), cutoff)
	e, step, err := lunarlander.NewDiscrete(task, c.Discount, c.Seed)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createBox2D: %w", err)
	}
	if c.FrameDir != "" {
		e.SetFrameDir(c.FrameDir)
	}
	return e, step, nil
}
