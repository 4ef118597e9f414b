package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/skillchain/config"
	"github.com/samuelfneumann/skillchain/experiment/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a configuration of a small, fast run into dir
func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	file := filepath.Join(dir, "run.yaml")
	content := `
hidden_sizes: [8]
minibatch_size: 4
replay_memory_capacity: 100
max_steps_ep: 20
update_slow_target_every: 5
epsilon_decay_length: 10
attempts: 2
log_level: error
board_dir: ` + filepath.Join(dir, "boards") + `
checkpoint_dir: ` + filepath.Join(dir, "ckpts") + `
frame_dir: ` + filepath.Join(dir, "frames") + `
chain:
  steps_per_opt: 2
  add_opt_cutoff: 4
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := newRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func TestCommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"dqn", "skillchain"}, names)

	dqnCmd, _, err := root.Find([]string{"dqn"})
	require.NoError(t, err)
	for _, flag := range []string{"config", "visualize", "no-visualize",
		"model", "env", "log-level", "monitor-addr", "seed", "episodes",
		"progress"} {
		assert.NotNil(t, dqnCmd.Flags().Lookup(flag), flag)
	}
	assert.Nil(t, dqnCmd.Flags().Lookup("chain"))

	chainCmd, _, err := root.Find([]string{"skillchain"})
	require.NoError(t, err)
	assert.NotNil(t, chainCmd.Flags().Lookup("chain"))
}

func TestDQNTrainAndEvaluate(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	require.NoError(t, execute(t, "dqn", "--config", cfg, "--episodes",
		"2", "--seed", "3"))

	ckpts, err := filepath.Glob(filepath.Join(dir, "ckpts", "*.ckpt"))
	require.NoError(t, err)
	require.Len(t, ckpts, 1)

	boards, err := filepath.Glob(filepath.Join(dir, "boards", "board_*"))
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Regexp(t, `board_\d{4}(_\d{2}){5}_0$`, boards[0])

	returns, err := tracker.LoadData(filepath.Join(boards[0],
		tracker.ReturnFile))
	require.NoError(t, err)
	assert.Len(t, returns, 2)
	assert.FileExists(t, filepath.Join(boards[0], tracker.PlotFile))

	// Training without --visualize renders nothing
	frames := filepath.Join(dir, "frames", "frame_*.png")
	rendered, err := filepath.Glob(frames)
	require.NoError(t, err)
	assert.Empty(t, rendered)

	require.NoError(t, execute(t, "dqn", "--config", cfg, "--model",
		ckpts[0]))

	// Evaluation renders every step
	rendered, err = filepath.Glob(frames)
	require.NoError(t, err)
	assert.NotEmpty(t, rendered)
}

func TestSkillChainCreatesOptions(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	require.NoError(t, execute(t, "skillchain", "--config", cfg,
		"--episodes", "4", "--chain"))

	boards, err := filepath.Glob(filepath.Join(dir, "boards", "board_*"))
	require.NoError(t, err)
	assert.Len(t, boards, 2)
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	assert.Error(t, execute(t, "dqn", "--config", cfg, "--env", "mujoco"))
	assert.Error(t, execute(t, "dqn", "--config", cfg, "--log-level",
		"loud"))
	assert.Error(t, execute(t, "dqn", "--config", cfg, "--model",
		filepath.Join(dir, "missing.ckpt")))
}

func TestFactory(t *testing.T) {
	c := config.Default()
	c.HiddenSizes = []int{4}
	c.MinibatchSize = 4
	c.ReplayMemoryCapacity = 10
	board := filepath.Join(t.TempDir(), "board")

	opt, err := newFactory(c, 8, 4, board)(1, 3)
	require.NoError(t, err)
	defer opt.Q.Close()
	assert.Equal(t, 1, opt.ID)
	assert.Equal(t, 3, opt.Born)
	assert.Equal(t, board+"_1", opt.Board.Dir())
	assert.Equal(t, 10, opt.Replay.Capacity())

	// A replay buffer that cannot hold a minibatch is rejected
	c.ReplayMemoryCapacity = 2
	opt, err = newFactory(c, 8, 4, board)(2, 0)
	assert.Error(t, err)
	assert.Nil(t, opt)
}
