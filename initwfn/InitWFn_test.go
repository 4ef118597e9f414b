package initwfn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestCreate(t *testing.T) {
	for _, init := range []InitWFn{
		Default(),
		{Type: HeN, Gain: 2},
		{Type: Uniform, Low: -1, High: 1},
		{Type: Gaussian, StdDev: 0.1},
		{Type: Zeroes},
	} {
		fn, err := init.Create()
		require.NoError(t, err, init.String())

		weights := fn(tensor.Float64, 3, 4).([]float64)
		assert.Len(t, weights, 12)
	}
}

func TestCreateZeroes(t *testing.T) {
	fn, err := InitWFn{Type: Zeroes}.Create()
	require.NoError(t, err)
	assert.Equal(t, make([]float64, 6), fn(tensor.Float64, 2, 3).([]float64))
}

func TestValidateRejectsBadValues(t *testing.T) {
	assert.Error(t, InitWFn{Type: "Orthogonal"}.Validate())
	assert.Error(t, InitWFn{Type: GlorotU}.Validate())
	assert.Error(t, InitWFn{Type: Uniform, Low: 1, High: 1}.Validate())
	assert.Error(t, InitWFn{Type: Gaussian}.Validate())
}
