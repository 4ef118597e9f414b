package expreplay

import (
	"testing"

	"github.com/samuelfneumann/skillchain/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// transition returns a transition whose state and reward identify it
func transition(id int) timestep.Transition {
	return timestep.Transition{
		State:        mat.NewVecDense(2, []float64{float64(id), 0}),
		Action:       id % 4,
		Reward:       float64(id),
		NextState:    mat.NewVecDense(2, []float64{float64(id), 1}),
		Continuation: 1,
	}
}

func newBuffer(t *testing.T, capacity int) *Buffer {
	t.Helper()
	b, err := Config{
		SampleMethod: Uniform,
		SampleSize:   1,
		Capacity:     capacity,
	}.Create(0)
	require.NoError(t, err)
	return b
}

func TestAddEvictsOldest(t *testing.T) {
	b := newBuffer(t, 5)
	for i := 0; i < 7; i++ {
		require.NoError(t, b.Add(transition(i)))
		assert.LessOrEqual(t, b.Len(), b.Capacity())
	}

	require.Equal(t, 5, b.Len())
	for i := 0; i < b.Len(); i++ {
		assert.Equal(t, float64(i+2), b.At(i).Reward)
	}
}

func TestSampleIsDistinct(t *testing.T) {
	b := newBuffer(t, 100)
	for i := 0; i < 50; i++ {
		require.NoError(t, b.Add(transition(i)))
	}

	for trial := 0; trial < 20; trial++ {
		batch, err := b.Sample(50)
		require.NoError(t, err)
		require.Equal(t, 50, batch.Len())

		seen := make(map[float64]bool)
		for _, r := range batch.Rewards {
			assert.False(t, seen[r], "transition %v sampled twice", r)
			seen[r] = true
		}
	}
}

func TestSampleRowsMatchTransitions(t *testing.T) {
	b := newBuffer(t, 10)
	for i := 0; i < 10; i++ {
		require.NoError(t, b.Add(transition(i)))
	}

	batch, err := b.Sample(4)
	require.NoError(t, err)
	for row := 0; row < batch.Len(); row++ {
		id := batch.Rewards[row]
		assert.Equal(t, id, batch.States.At(row, 0))
		assert.Equal(t, id, batch.NextStates.At(row, 0))
		assert.Equal(t, 1.0, batch.NextStates.At(row, 1))
		assert.Equal(t, int(id)%4, batch.Actions[row])
	}
}

func TestSampleErrors(t *testing.T) {
	b := newBuffer(t, 10)

	_, err := b.Sample(1)
	assert.True(t, IsEmptyBuffer(err))
	assert.False(t, IsInsufficientSamples(err))

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Add(transition(i)))
	}
	_, err = b.Sample(4)
	assert.True(t, IsInsufficientSamples(err))
	assert.False(t, IsEmptyBuffer(err))

	var replayErr *ExpReplayError
	assert.ErrorAs(t, err, &replayErr)
	assert.Equal(t, "sample", replayErr.Op)

	_, err = b.Sample(0)
	assert.Error(t, err)
}

func TestFifoSelector(t *testing.T) {
	b, err := New(NewFifoSelector(), 3)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, b.Add(transition(i)))
	}

	batch, err := b.Sample(2)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, batch.Rewards)
}

func TestAddRejectsMismatchedFeatures(t *testing.T) {
	b := newBuffer(t, 3)
	require.NoError(t, b.Add(transition(0)))

	bad := transition(1)
	bad.State = mat.NewVecDense(3, nil)
	bad.NextState = mat.NewVecDense(3, nil)
	assert.Error(t, b.Add(bad))
	assert.Equal(t, 1, b.Len())
}

func TestConfigRejectsBadValues(t *testing.T) {
	_, err := Config{SampleMethod: "Prioritized", SampleSize: 1,
		Capacity: 1}.Create(0)
	assert.Error(t, err)

	_, err = Config{SampleMethod: Uniform, SampleSize: 1}.Create(0)
	assert.Error(t, err)
}

func TestUniformSelectorIsSeeded(t *testing.T) {
	a := NewUniformSelector(7)
	b := NewUniformSelector(7)
	for trial := 0; trial < 10; trial++ {
		chosen := a.choose(5, 8)
		assert.Equal(t, chosen, b.choose(5, 8))

		seen := make(map[int]bool)
		for _, i := range chosen {
			assert.GreaterOrEqual(t, i, 0)
			assert.Less(t, i, 8)
			assert.False(t, seen[i], "index %v chosen twice", i)
			seen[i] = true
		}
	}
}
