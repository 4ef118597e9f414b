package experiment

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/skillchain/agent/deepq"
	"github.com/samuelfneumann/skillchain/agent/policy"
	env "github.com/samuelfneumann/skillchain/environment"
	"github.com/samuelfneumann/skillchain/experiment/checkpointer"
	"github.com/samuelfneumann/skillchain/experiment/tracker"
	"github.com/samuelfneumann/skillchain/expreplay"
	"github.com/samuelfneumann/skillchain/initwfn"
	"github.com/samuelfneumann/skillchain/skillchain"
	"github.com/samuelfneumann/skillchain/solver"
	ts "github.com/samuelfneumann/skillchain/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// corridor is an environment where moving right from position 0 to
// position length ends the episode. Every step is rewarded with -1.
type corridor struct {
	length   int
	pos      int
	current  ts.TimeStep
	renders  int
	resetErr error
}

func (c *corridor) obs() *mat.VecDense {
	return mat.NewVecDense(2, []float64{float64(c.pos) / 10, 1})
}

func (c *corridor) Reset() (ts.TimeStep, error) {
	if c.resetErr != nil {
		return ts.TimeStep{}, c.resetErr
	}
	c.pos = 0
	c.current = ts.New(ts.First, 0, 1, c.obs(), 0)
	return c.current, nil
}

func (c *corridor) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if !c.ActionSpec().Contains(action) {
		return ts.TimeStep{}, false, env.ErrIllegalAction
	}
	if action.AtVec(0) == 1 {
		c.pos++
	} else if c.pos > 0 {
		c.pos--
	}

	stepType := ts.Mid
	if c.pos >= c.length {
		stepType = ts.Last
	}
	c.current = ts.New(stepType, -1, 1, c.obs(), c.current.Number+1)
	c.current.SetEnd(ts.TerminalStateReached)
	return c.current, c.current.Last(), nil
}

func (c *corridor) CurrentTimeStep() ts.TimeStep {
	return c.current
}

func (c *corridor) ObservationSpec() env.Spec {
	return env.NewSpec(mat.NewVecDense(2, nil), env.Observation,
		mat.NewVecDense(2, nil), mat.NewVecDense(2, []float64{1, 1}),
		env.Continuous)
}

func (c *corridor) ActionSpec() env.Spec {
	return env.NewSpec(mat.NewVecDense(1, nil), env.Action,
		mat.NewVecDense(1, []float64{0}), mat.NewVecDense(1, []float64{1}),
		env.Discrete)
}

func (c *corridor) DiscountSpec() env.Spec {
	return env.NewSpec(mat.NewVecDense(1, nil), env.Discount,
		mat.NewVecDense(1, []float64{1}), mat.NewVecDense(1, []float64{1}),
		env.Continuous)
}

func (c *corridor) Render() error {
	c.renders++
	return nil
}

func (c *corridor) Close() error {
	return nil
}

func testQConfig() deepq.Config {
	return deepq.Config{
		HiddenSizes: []int{8},
		Activations: deepq.ReLUs(1),
		InitWFn:     initwfn.Default(),
		Solver:      solver.NewDefaultAdam(1e-3),
		Gamma:       0.99,
		BatchSize:   2,
	}
}

func testFactory(t *testing.T) skillchain.Factory {
	t.Helper()
	root := t.TempDir()

	return func(id, born int) (*skillchain.Option, error) {
		q, err := deepq.New(2, 2, testQConfig())
		if err != nil {
			return nil, err
		}
		replay, err := expreplay.Config{
			SampleMethod: expreplay.Uniform,
			SampleSize:   2,
			Capacity:     100,
		}.Create(uint64(id))
		if err != nil {
			return nil, err
		}
		board, err := tracker.NewBoard(filepath.Join(root,
			fmt.Sprintf("board_%v", id)))
		if err != nil {
			return nil, err
		}
		return skillchain.NewOption(id, born, q, replay, board)
	}
}

func testConfig(episodes int) Config {
	return Config{
		Episodes:              episodes,
		MaxStepsEp:            50,
		UpdateSlowTargetEvery: 3,
		TrainEvery:            1,
	}
}

type testRun struct {
	exp   *Online
	chain *skillchain.Chain
	env   *corridor
	logs  *bytes.Buffer
}

func newTestRun(t *testing.T, c Config, chainConfig skillchain.Config,
	checks ...checkpointer.Checkpointer) testRun {
	t.Helper()

	chain, err := skillchain.New(chainConfig, testFactory(t))
	require.NoError(t, err)
	t.Cleanup(func() { chain.Close() })

	schedule, err := policy.NewSchedule(1.0, 0.1, 5, 0.5)
	require.NoError(t, err)
	p, err := policy.NewEGreedy(schedule, 2, 1)
	require.NoError(t, err)

	e := &corridor{length: 3}
	var logs bytes.Buffer
	exp, err := NewOnline(e, chain, p, c, zerolog.New(&logs), checks...)
	require.NoError(t, err)

	return testRun{exp: exp, chain: chain, env: e, logs: &logs}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, testConfig(1).Validate())

	c := testConfig(1)
	c.MaxStepsEp = 0
	assert.Error(t, c.Validate())

	c = testConfig(1)
	c.UpdateSlowTargetEvery = 0
	assert.Error(t, c.Validate())

	c = testConfig(1)
	c.TrainEvery = 0
	assert.Error(t, c.Validate())

	c = testConfig(-1)
	assert.Error(t, c.Validate())
}

func TestOnlineRun(t *testing.T) {
	run := newTestRun(t, testConfig(5), skillchain.DefaultConfig(5))

	var summaries []EpisodeSummary
	run.exp.Register(ObserverFunc(func(s EpisodeSummary) {
		summaries = append(summaries, s)
	}))
	require.NoError(t, run.exp.Run(context.Background()))

	assert.Equal(t, 5, run.exp.Episode())
	require.Len(t, summaries, 5)

	board := run.chain.Acting().Board
	assert.Equal(t, 5, board.Episodes())

	totalSteps := 0
	for i, s := range summaries {
		assert.Equal(t, i, s.Episode)
		assert.Equal(t, 0, s.Option)
		assert.Equal(t, -float64(s.Steps), s.Return)
		assert.Equal(t, s.Return, board.Returns()[i])
		assert.Equal(t, float64(s.Steps), board.Lengths()[i])
		assert.Equal(t, s.Epsilon, board.Epsilons()[i])
		assert.GreaterOrEqual(t, s.Steps, 3)
		totalSteps += s.Steps
	}
	assert.Equal(t, totalSteps, run.exp.TotalSteps())

	// Every transition is recorded and learned from once the buffer
	// holds a minibatch
	opt := run.chain.Acting()
	assert.Equal(t, totalSteps, opt.Replay.Len())
	assert.Equal(t, totalSteps-1, opt.Q.GradientSteps())

	assert.Contains(t, run.logs.String(), "Episode  0, Reward:")
	assert.Contains(t, run.logs.String(), "moving to exponential epsilon "+
		"decay")
	assert.Equal(t, 0, run.env.renders)

	require.NoError(t, run.exp.Save())
	returns, err := tracker.LoadData(filepath.Join(board.Dir(),
		tracker.ReturnFile))
	require.NoError(t, err)
	assert.Equal(t, board.Returns(), returns)
}

func TestOnlineEpisodeCutoff(t *testing.T) {
	c := testConfig(3)
	c.MaxStepsEp = 2
	c.Visualize = true
	run := newTestRun(t, c, skillchain.DefaultConfig(3))

	require.NoError(t, run.exp.Run(context.Background()))
	board := run.chain.Acting().Board
	assert.Equal(t, []float64{-2, -2, -2}, board.Returns())
	assert.Equal(t, []float64{2, 2, 2}, board.Lengths())
	assert.Equal(t, 6, run.exp.TotalSteps())
	assert.Equal(t, 6, run.env.renders)
}

func TestOnlineCancelled(t *testing.T) {
	run := newTestRun(t, testConfig(5), skillchain.DefaultConfig(5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := run.exp.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, run.exp.Episode())
	assert.NoError(t, run.exp.Save())
}

func TestOnlineResetError(t *testing.T) {
	run := newTestRun(t, testConfig(1), skillchain.DefaultConfig(1))
	run.env.resetErr = errors.New("no reset")
	assert.Error(t, run.exp.Run(context.Background()))
}

func TestOnlineCreatesOptions(t *testing.T) {
	chainConfig := skillchain.Config{
		Enabled:      true,
		StepsPerOpt:  2,
		Gestation:    1,
		AddOptCutoff: 5,
	}
	run := newTestRun(t, testConfig(6), chainConfig)
	require.NoError(t, run.exp.Run(context.Background()))

	options := run.chain.Options()
	require.Len(t, options, 3)
	assert.Equal(t, 2, options[1].Born)
	assert.Equal(t, 4, options[2].Born)

	// Options record the episodes after their creation
	assert.Equal(t, 6, options[0].Board.Episodes())
	assert.Equal(t, 3, options[1].Board.Episodes())
	assert.Equal(t, 1, options[2].Board.Episodes())
	assert.Greater(t, options[1].Q.GradientSteps(), 0)
	assert.Contains(t, run.logs.String(), "created option")
}

func TestOnlineCheckpoints(t *testing.T) {
	dir := t.TempDir()
	chain, err := skillchain.New(skillchain.DefaultConfig(4),
		testFactory(t))
	require.NoError(t, err)
	defer chain.Close()

	check := checkpointer.NewNEpisode(2, chain.Acting().Q,
		checkpointer.FilenameEnumerator(0, filepath.Join(dir, "q"), ".ckpt"))

	schedule, err := policy.NewSchedule(1.0, 0.1, 5, 0.5)
	require.NoError(t, err)
	p, err := policy.NewEGreedy(schedule, 2, 1)
	require.NoError(t, err)

	exp, err := NewOnline(&corridor{length: 3}, chain, p, testConfig(4),
		zerolog.Nop(), check)
	require.NoError(t, err)
	require.NoError(t, exp.Run(context.Background()))

	assert.FileExists(t, filepath.Join(dir, "q_1.ckpt"))
	assert.FileExists(t, filepath.Join(dir, "q_2.ckpt"))
	assert.NoFileExists(t, filepath.Join(dir, "q_3.ckpt"))
}

func TestEvaluate(t *testing.T) {
	chain, err := skillchain.New(skillchain.DefaultConfig(1),
		testFactory(t))
	require.NoError(t, err)
	defer chain.Close()

	e := &corridor{length: 3}
	summaries, err := Evaluate(context.Background(), e, chain.Acting().Q,
		3, 5, true, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	for _, s := range summaries {
		assert.LessOrEqual(t, s.Steps, 5)
		assert.Equal(t, -float64(s.Steps), s.Return)
	}
	assert.Greater(t, e.renders, 0)

	_, err = Evaluate(context.Background(), e, chain.Acting().Q, 1, 0,
		false, zerolog.Nop())
	assert.Error(t, err)
}

func TestEpisodeSummaryString(t *testing.T) {
	s := EpisodeSummary{Episode: 3, Return: -12.5, Steps: 80,
		Epsilon: 0.5}
	assert.Equal(t, "Episode  3, Reward: -12.500, Steps: 80, Next eps:   "+
		"0.500, Minutes:   0.000", s.String())
}

// syncBatch is a non-terminal batch of corridor transitions
func syncBatch() expreplay.Batch {
	return expreplay.Batch{
		States:        mat.NewDense(2, 2, []float64{0, 1, 0.1, 1}),
		Actions:       []int{1, 0},
		Rewards:       []float64{-1, -1},
		NextStates:    mat.NewDense(2, 2, []float64{0.1, 1, 0.2, 1}),
		Continuations: []float64{1, 1},
	}
}

// expectedTargets returns the double Q-learning targets of b when
// q selects next actions and weights, a gob encoded network, values
// them
func expectedTargets(t *testing.T, q *deepq.DeepQ,
	weights []byte, b expreplay.Batch) []float64 {
	t.Helper()
	slow, err := deepq.New(2, 2, testQConfig())
	require.NoError(t, err)
	defer slow.Close()
	require.NoError(t, gob.NewDecoder(bytes.NewReader(weights)).Decode(slow))

	want := make([]float64, b.Len())
	for i := range want {
		next := mat.VecDenseCopyOf(b.NextStates.RowView(i))
		online, err := q.ActionValues(next)
		require.NoError(t, err)
		values, err := slow.ActionValues(next)
		require.NoError(t, err)
		want[i] = b.Rewards[i] + 0.99*values[floats.MaxIdx(online)]
	}
	return want
}

// syncRun returns an Online whose acting option has learned away from
// its target network before the run starts, along with the weights
// the option holds at that point
func syncRun(t *testing.T, syncEvery int) (testRun, []byte) {
	t.Helper()
	c := testConfig(3)
	c.UpdateSlowTargetEvery = syncEvery
	run := newTestRun(t, c, skillchain.DefaultConfig(3))

	q := run.chain.Acting().Q
	for i := 0; i < 5; i++ {
		_, err := q.Learn(syncBatch())
		require.NoError(t, err)
	}

	var weights bytes.Buffer
	require.NoError(t, gob.NewEncoder(&weights).Encode(q))
	return run, weights.Bytes()
}

func TestOnlineSyncsTargetAtFirstStep(t *testing.T) {
	run, start := syncRun(t, 1_000_000)
	q := run.chain.Acting().Q

	// Before the run the target still holds the initial weights
	before, err := q.Targets(syncBatch())
	require.NoError(t, err)
	assert.False(t, floats.EqualApprox(expectedTargets(t, q, start,
		syncBatch()), before, 1e-9))

	require.NoError(t, run.exp.Run(context.Background()))
	require.Greater(t, q.GradientSteps(), 5)

	// The only sync happened at step 0, before any learning in the run
	got, err := q.Targets(syncBatch())
	require.NoError(t, err)
	assert.InDeltaSlice(t, expectedTargets(t, q, start, syncBatch()), got,
		1e-9)
}

func TestOnlineSyncsTargetPeriodically(t *testing.T) {
	run, start := syncRun(t, 1)
	q := run.chain.Acting().Q

	require.NoError(t, run.exp.Run(context.Background()))

	// Later syncs replaced the weights copied at step 0
	got, err := q.Targets(syncBatch())
	require.NoError(t, err)
	assert.False(t, floats.EqualApprox(expectedTargets(t, q, start,
		syncBatch()), got, 1e-9))
}
