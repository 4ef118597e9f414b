package environment

import (
	"testing"

	"github.com/samuelfneumann/skillchain/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestIntervalLimit(t *testing.T) {
	_, err := NewIntervalLimit([]r1.Interval{{Min: -1, Max: 1}}, []int{0, 1},
		timestep.TerminalStateReached)
	assert.Error(t, err)
	_, err = NewIntervalLimit([]r1.Interval{{Min: 1, Max: 1}}, []int{0},
		timestep.TerminalStateReached)
	assert.Error(t, err)

	limit, err := NewIntervalLimit([]r1.Interval{{Min: -1, Max: 1}},
		[]int{1}, timestep.TerminalStateReached)
	require.NoError(t, err)

	inside := timestep.New(timestep.Mid, 0, 1,
		mat.NewVecDense(2, []float64{5, 0.99}), 3)
	assert.False(t, limit.End(&inside))
	assert.True(t, inside.Mid())

	outside := timestep.New(timestep.Mid, 0, 1,
		mat.NewVecDense(2, []float64{0, -1}), 3)
	assert.True(t, limit.End(&outside))
	assert.True(t, outside.Last())
	assert.Equal(t, timestep.TerminalStateReached, outside.EndType())
}

func TestStepLimit(t *testing.T) {
	limit := NewStepLimit(2)
	obs := mat.NewVecDense(1, nil)

	step := timestep.New(timestep.Mid, 0, 1, obs, 1)
	assert.False(t, limit.End(&step))

	step = timestep.New(timestep.Mid, 0, 1, obs, 2)
	assert.True(t, limit.End(&step))
	assert.Equal(t, timestep.Timeout, step.EndType())
}

func TestUniformStarter(t *testing.T) {
	s := NewUniformStarter([]r1.Interval{{Min: 0, Max: 1},
		{Min: 5, Max: 5}}, 1)
	for i := 0; i < 20; i++ {
		start := s.Start()
		require.Equal(t, 2, start.Len())
		assert.GreaterOrEqual(t, start.AtVec(0), 0.0)
		assert.LessOrEqual(t, start.AtVec(0), 1.0)
		assert.Equal(t, 5.0, start.AtVec(1))
	}
}
