package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/skillchain/environment/envconfig"
	"github.com/samuelfneumann/skillchain/solver"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, 0.99, c.Gamma)
	assert.Equal(t, []int{200, 200, 200}, c.HiddenSizes)
	assert.Equal(t, 5e-5, c.LR)
	assert.Equal(t, 1.0, c.LRDecay)
	assert.Equal(t, 1e-6, c.L2Reg)
	assert.Equal(t, 0.0, c.Dropout)
	assert.Equal(t, 1000, c.NumEpisodes)
	assert.Equal(t, 1000, c.MaxStepsEp)
	assert.Equal(t, 100, c.UpdateSlowTargetEvery)
	assert.Equal(t, 1, c.TrainEvery)
	assert.Equal(t, 1_000_000, c.ReplayMemoryCapacity)
	assert.Equal(t, 1024, c.MinibatchSize)
	assert.Equal(t, 1.0, c.EpsilonStart)
	assert.Equal(t, 0.05, c.EpsilonEnd)
	assert.Equal(t, 10000, c.EpsilonDecayLength)
	assert.Equal(t, 0.98, c.EpsilonDecayExp)
	assert.Equal(t, 10, c.Attempts)

	assert.False(t, c.Chain.Enabled)
	assert.Equal(t, 100, c.Chain.StepsPerOpt)
	assert.Equal(t, 10, c.Chain.Gestation)
	assert.Equal(t, 500, c.Chain.AddOptCutoff)
}

func TestDerivedConfigs(t *testing.T) {
	c := Default()

	q := c.DeepQ()
	assert.Equal(t, []string{"relu", "relu", "relu"}, q.Activations)
	assert.Equal(t, solver.Adam, q.Solver.Type)
	assert.Equal(t, 5e-5, q.Solver.StepSize)
	assert.Equal(t, 1024, q.BatchSize)
	assert.Equal(t, 1e-6, q.L2)

	s, err := c.Schedule()
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Epsilon())
	assert.InDelta(t, 0.95/10000, s.LinearStep(), 1e-15)

	assert.Equal(t, 1_000_000, c.Replay().Capacity)
	assert.Equal(t, 1000, c.Experiment().MaxStepsEp)

	e := c.Environment()
	assert.Equal(t, envconfig.Box2D, e.Environment)
	assert.Equal(t, 1000, e.EpisodeCutoff)
	assert.Empty(t, e.FrameDir)

	c.Visualize = true
	assert.Equal(t, "frames", c.Environment().FrameDir)
	assert.True(t, c.Experiment().Visualize)
}

func TestValidate(t *testing.T) {
	for name, modify := range map[string]func(*Config){
		"lr decay":      func(c *Config) { c.LRDecay = 0.99 },
		"capacity":      func(c *Config) { c.ReplayMemoryCapacity = 10 },
		"attempts":      func(c *Config) { c.Attempts = -1 },
		"checkpoint":    func(c *Config) { c.CheckpointEvery = -1 },
		"log level":     func(c *Config) { c.LogLevel = "loud" },
		"gamma":         func(c *Config) { c.Gamma = 2 },
		"activation":    func(c *Config) { c.Activation = "softsign" },
		"learning rate": func(c *Config) { c.LR = 0 },
		"epsilon":       func(c *Config) { c.EpsilonEnd = 2 },
		"max steps":     func(c *Config) { c.MaxStepsEp = 0 },
		"chain": func(c *Config) {
			c.Chain.Enabled = true
			c.Chain.StepsPerOpt = 0
		},
	} {
		t.Run(name, func(t *testing.T) {
			c := Default()
			modify(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLevel(t *testing.T) {
	c := Default()
	assert.Equal(t, zerolog.InfoLevel, c.Level())
	c.LogLevel = "debug"
	assert.Equal(t, zerolog.DebugLevel, c.Level())
}

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
num_episodes: 200
minibatch_size: 32
hidden_sizes: [64, 64]
chain:
  enabled: true
  gestation: 3
`), 0o644))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(file)
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 200, c.NumEpisodes)
	assert.Equal(t, 32, c.MinibatchSize)
	assert.Equal(t, []int{64, 64}, c.HiddenSizes)
	assert.True(t, c.Chain.Enabled)
	assert.Equal(t, 3, c.Chain.Gestation)

	// The option schedule follows the number of episodes
	assert.Equal(t, 20, c.Chain.StepsPerOpt)
	assert.Equal(t, 100, c.Chain.AddOptCutoff)
	assert.Equal(t, 0.99, c.Gamma)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("LUNAR_NUM_EPISODES", "40")
	t.Setenv("LUNAR_CHAIN_STEPS_PER_OPT", "7")
	t.Setenv("LUNAR_SEED", "3")

	v := viper.New()
	SetDefaults(v)
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 40, c.NumEpisodes)
	assert.Equal(t, uint64(3), c.Seed)
	assert.Equal(t, 7, c.Chain.StepsPerOpt)
	assert.Equal(t, 20, c.Chain.AddOptCutoff)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("LUNAR_LR_DECAY", "0.5")
	v := viper.New()
	SetDefaults(v)
	_, err := Load(v)
	assert.Error(t, err)

	v = viper.New()
	SetDefaults(v)
	v.SetConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load(v)
	assert.Error(t, err)
}
