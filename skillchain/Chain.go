package skillchain

import (
	"errors"
	"fmt"
)

// Config configures the creation of options in a Chain
type Config struct {
	// Enabled turns on the creation of options after the first
	Enabled bool `mapstructure:"enabled"`

	// StepsPerOpt is the number of episodes between option creations
	StepsPerOpt int `mapstructure:"steps_per_opt"`

	// Gestation is the number of episodes an option is gestating for
	// after its creation
	Gestation int `mapstructure:"gestation"`

	// AddOptCutoff is the episode from which on no options are created
	AddOptCutoff int `mapstructure:"add_opt_cutoff"`
}

// DefaultConfig returns the default Config for a run of episodes
// episodes. Chaining is disabled.
func DefaultConfig(episodes int) Config {
	return Config{
		StepsPerOpt:  episodes / 10,
		Gestation:    10,
		AddOptCutoff: episodes / 2,
	}
}

// Validate returns an error if c is not a valid Config
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.StepsPerOpt < 1 {
		return fmt.Errorf("validate: steps per option must be >= 1, got %v",
			c.StepsPerOpt)
	}
	if c.Gestation < 0 {
		return fmt.Errorf("validate: gestation must be >= 0, got %v",
			c.Gestation)
	}
	if c.AddOptCutoff < 0 {
		return fmt.Errorf("validate: option cutoff must be >= 0, got %v",
			c.AddOptCutoff)
	}
	return nil
}

// Factory creates the option with the given ID at episode born
type Factory func(id, born int) (*Option, error)

// Chain manages the options of a skill chain. Option 0 is created with
// the Chain and is the only option that selects actions. Every option
// records all experience and learns from it independently.
type Chain struct {
	config  Config
	factory Factory
	options []*Option
}

// New returns a new Chain whose first option is created by factory
func New(config Config, factory Factory) (*Chain, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	first, err := factory(0, 0)
	if err != nil {
		return nil, fmt.Errorf("new: could not create option 0: %w", err)
	}

	return &Chain{
		config:  config,
		factory: factory,
		options: []*Option{first},
	}, nil
}

// Len returns the number of options in the chain
func (c *Chain) Len() int {
	return len(c.options)
}

// Options returns the options in order of creation
func (c *Chain) Options() []*Option {
	return c.options
}

// Acting returns the option that selects actions
func (c *Chain) Acting() *Option {
	return c.options[0]
}

// Gestating returns whether o is still gestating at episode
func (c *Chain) Gestating(o *Option, episode int) bool {
	return o.Age(episode) < c.config.Gestation
}

// ShouldAdd returns whether a new option is created at the end of
// episode
func (c *Chain) ShouldAdd(episode int) bool {
	return c.config.Enabled && episode > 0 &&
		episode%c.config.StepsPerOpt == 0 && episode < c.config.AddOptCutoff
}

// EndEpisode is called at the end of each episode. It creates and
// returns a new option when one is due and returns nil otherwise.
func (c *Chain) EndEpisode(episode int) (*Option, error) {
	if !c.ShouldAdd(episode) {
		return nil, nil
	}

	o, err := c.factory(len(c.options), episode)
	if err != nil {
		return nil, fmt.Errorf("endEpisode: could not create option %v: %w",
			len(c.options), err)
	}
	c.options = append(c.options, o)
	return o, nil
}

// Close releases the resources of every option
func (c *Chain) Close() error {
	var errs []error
	for _, o := range c.options {
		if err := o.Q.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close: option %v: %w", o.ID, err))
		}
	}
	return errors.Join(errs...)
}
