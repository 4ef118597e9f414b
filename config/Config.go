// Package config holds the hyperparameters of a Lunar Lander run and
// loads them from configuration files, environment variables and
// command line flags
package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/skillchain/agent/deepq"
	"github.com/samuelfneumann/skillchain/agent/policy"
	"github.com/samuelfneumann/skillchain/environment/envconfig"
	"github.com/samuelfneumann/skillchain/experiment"
	"github.com/samuelfneumann/skillchain/expreplay"
	"github.com/samuelfneumann/skillchain/initwfn"
	"github.com/samuelfneumann/skillchain/skillchain"
	"github.com/samuelfneumann/skillchain/solver"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read by Load
const EnvPrefix = "LUNAR"

// Config holds all hyperparameters and settings of a run
type Config struct {
	// DQN
	Gamma       float64         `mapstructure:"gamma"`
	HiddenSizes []int           `mapstructure:"hidden_sizes"`
	Activation  string          `mapstructure:"activation"`
	InitWFn     initwfn.InitWFn `mapstructure:"init"`
	LR          float64         `mapstructure:"lr"`
	LRDecay     float64         `mapstructure:"lr_decay"`
	L2Reg       float64         `mapstructure:"l2_reg"`
	Dropout     float64         `mapstructure:"dropout"`

	// Training loop
	NumEpisodes           int `mapstructure:"num_episodes"`
	MaxStepsEp            int `mapstructure:"max_steps_ep"`
	UpdateSlowTargetEvery int `mapstructure:"update_slow_target_every"`
	TrainEvery            int `mapstructure:"train_every"`

	// Experience replay
	ReplayMemoryCapacity int `mapstructure:"replay_memory_capacity"`
	MinibatchSize        int `mapstructure:"minibatch_size"`

	// Exploration
	EpsilonStart       float64 `mapstructure:"epsilon_start"`
	EpsilonEnd         float64 `mapstructure:"epsilon_end"`
	EpsilonDecayLength int     `mapstructure:"epsilon_decay_length"`
	EpsilonDecayExp    float64 `mapstructure:"epsilon_decay_exp"`

	// Skill chaining
	Chain skillchain.Config `mapstructure:"chain"`

	// Environment
	Env       string `mapstructure:"env"`
	Seed      uint64 `mapstructure:"seed"`
	Visualize bool   `mapstructure:"visualize"`
	FrameDir  string `mapstructure:"frame_dir"`

	// Checkpoints and evaluation
	Model           string `mapstructure:"model"`
	Attempts        int    `mapstructure:"attempts"`
	CheckpointDir   string `mapstructure:"checkpoint_dir"`
	CheckpointEvery int    `mapstructure:"checkpoint_every"`

	// Logging and monitoring
	BoardDir    string `mapstructure:"board_dir"`
	LogLevel    string `mapstructure:"log_level"`
	MonitorAddr string `mapstructure:"monitor_addr"`
	Progress    bool   `mapstructure:"progress"`
}

// Default returns the default configuration of a run
func Default() Config {
	const episodes = 1000

	return Config{
		Gamma:       0.99,
		HiddenSizes: []int{200, 200, 200},
		Activation:  "relu",
		InitWFn:     initwfn.Default(),
		LR:          5e-5,
		LRDecay:     1,
		L2Reg:       1e-6,
		Dropout:     0,

		NumEpisodes:           episodes,
		MaxStepsEp:            1000,
		UpdateSlowTargetEvery: 100,
		TrainEvery:            1,

		ReplayMemoryCapacity: 1_000_000,
		MinibatchSize:        1024,

		EpsilonStart:       1.0,
		EpsilonEnd:         0.05,
		EpsilonDecayLength: 10000,
		EpsilonDecayExp:    0.98,

		Chain: skillchain.DefaultConfig(episodes),

		Env:  string(envconfig.Box2D),
		Seed: 0,

		Attempts:      experiment.DefaultAttempts,
		CheckpointDir: ".",
		FrameDir:      "frames",

		BoardDir: ".",
		LogLevel: "info",
	}
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	if c.LRDecay != 1 {
		return fmt.Errorf("validate: lr_decay must be 1, got %v", c.LRDecay)
	}
	if c.ReplayMemoryCapacity < c.MinibatchSize {
		return fmt.Errorf("validate: replay_memory_capacity (%v) must be at "+
			"least minibatch_size (%v)", c.ReplayMemoryCapacity,
			c.MinibatchSize)
	}
	if c.Attempts < 0 {
		return fmt.Errorf("validate: attempts must be >= 0, got %v",
			c.Attempts)
	}
	if c.CheckpointEvery < 0 {
		return fmt.Errorf("validate: checkpoint_every must be >= 0, got %v",
			c.CheckpointEvery)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	if err := c.DeepQ().Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if _, err := c.Schedule(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if err := c.Experiment().Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if err := c.Chain.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

// DeepQ returns the configuration of the action-value function of
// each option
func (c Config) DeepQ() deepq.Config {
	activations := make([]string, len(c.HiddenSizes))
	for i := range activations {
		activations[i] = c.Activation
	}

	return deepq.Config{
		HiddenSizes: append([]int(nil), c.HiddenSizes...),
		Activations: activations,
		InitWFn:     c.InitWFn,
		Solver:      solver.NewDefaultAdam(c.LR),
		Gamma:       c.Gamma,
		L2:          c.L2Reg,
		Dropout:     c.Dropout,
		BatchSize:   c.MinibatchSize,
	}
}

// Schedule returns a new ε schedule
func (c Config) Schedule() (*policy.Schedule, error) {
	return policy.NewSchedule(c.EpsilonStart, c.EpsilonEnd,
		c.EpsilonDecayLength, c.EpsilonDecayExp)
}

// Replay returns the configuration of the replay buffer of each option
func (c Config) Replay() expreplay.Config {
	return expreplay.Config{
		SampleMethod: expreplay.Uniform,
		SampleSize:   c.MinibatchSize,
		Capacity:     c.ReplayMemoryCapacity,
	}
}

// Experiment returns the configuration of the training loop
func (c Config) Experiment() experiment.Config {
	return experiment.Config{
		Episodes:              c.NumEpisodes,
		MaxStepsEp:            c.MaxStepsEp,
		UpdateSlowTargetEvery: c.UpdateSlowTargetEvery,
		TrainEvery:            c.TrainEvery,
		Visualize:             c.Visualize,
	}
}

// Environment returns the configuration of the environment
func (c Config) Environment() envconfig.Config {
	frameDir := ""
	if c.Visualize {
		frameDir = c.FrameDir
	}

	return envconfig.Config{
		Environment:   envconfig.EnvName(c.Env),
		EpisodeCutoff: c.MaxStepsEp,
		Discount:      c.Gamma,
		Seed:          c.Seed,
		FrameDir:      frameDir,
	}
}

// Level returns the zerolog level of the configuration, or the info
// level if it cannot be parsed
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// SetDefaults registers the keys of Default with v, so that every key
// can be set through environment variables prefixed with EnvPrefix.
// Nested keys use underscores, e.g. LUNAR_CHAIN_ENABLED. The option
// schedule keys depend on num_episodes and are filled in by Load.
func SetDefaults(v *viper.Viper) {
	d := Default()
	defaults := map[string]interface{}{
		"gamma":                    d.Gamma,
		"hidden_sizes":             d.HiddenSizes,
		"activation":               d.Activation,
		"init.type":                string(d.InitWFn.Type),
		"init.gain":                d.InitWFn.Gain,
		"init.low":                 d.InitWFn.Low,
		"init.high":                d.InitWFn.High,
		"init.mean":                d.InitWFn.Mean,
		"init.stddev":              d.InitWFn.StdDev,
		"lr":                       d.LR,
		"lr_decay":                 d.LRDecay,
		"l2_reg":                   d.L2Reg,
		"dropout":                  d.Dropout,
		"num_episodes":             d.NumEpisodes,
		"max_steps_ep":             d.MaxStepsEp,
		"update_slow_target_every": d.UpdateSlowTargetEvery,
		"train_every":              d.TrainEvery,
		"replay_memory_capacity":   d.ReplayMemoryCapacity,
		"minibatch_size":           d.MinibatchSize,
		"epsilon_start":            d.EpsilonStart,
		"epsilon_end":              d.EpsilonEnd,
		"epsilon_decay_length":     d.EpsilonDecayLength,
		"epsilon_decay_exp":        d.EpsilonDecayExp,
		"chain.enabled":            d.Chain.Enabled,
		"chain.gestation":          d.Chain.Gestation,
		"env":                      d.Env,
		"seed":                     d.Seed,
		"visualize":                d.Visualize,
		"frame_dir":                d.FrameDir,
		"model":                    d.Model,
		"attempts":                 d.Attempts,
		"checkpoint_dir":           d.CheckpointDir,
		"checkpoint_every":         d.CheckpointEvery,
		"board_dir":                d.BoardDir,
		"log_level":                d.LogLevel,
		"monitor_addr":             d.MonitorAddr,
		"progress":                 d.Progress,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the configuration held by v, first reading the
// configuration file set on v if there is one. The skill-chain option
// schedule scales with the number of episodes unless it is set
// explicitly.
func Load(v *viper.Viper) (Config, error) {
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("load: could not read config: %w",
				err)
		}
	}

	chain := skillchain.DefaultConfig(v.GetInt("num_episodes"))
	v.SetDefault("chain.steps_per_opt", chain.StepsPerOpt)
	v.SetDefault("chain.add_opt_cutoff", chain.AddOptCutoff)

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("load: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("load: %w", err)
	}
	return c, nil
}
