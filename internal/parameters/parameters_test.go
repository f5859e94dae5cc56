package parameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromConfigString(t *testing.T) {
	params := NewFromConfigString("width=32, height=24,debug,,goal=4:5")
	assert.Equal(t, Params{"width": "32", "height": "24", "debug": "", "goal": "4:5"}, params)
	assert.Empty(t, NewFromConfigString(""))
}

func TestPopParamOr(t *testing.T) {
	params := NewFromConfigString("width=32,cell_size=12.5,height=,name=demo,starts=")

	width, err := PopParamOr(params, "width", 16)
	require.NoError(t, err)
	assert.Equal(t, 32, width)

	// Missing or empty values keep the default.
	height, err := PopParamOr(params, "height", 16)
	require.NoError(t, err)
	assert.Equal(t, 16, height)
	workers, err := PopParamOr(params, "workers", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, workers)

	cellSize, err := PopParamOr(params, "cell_size", float32(45))
	require.NoError(t, err)
	assert.Equal(t, float32(12.5), cellSize)

	require.Error(t, CheckAllUsed(params))
	name, err := PopParamOr(params, "name", "")
	require.NoError(t, err)
	assert.Equal(t, "demo", name)

	// Empty strings are kept as given.
	starts, err := PopParamOr(params, "starts", "11:5")
	require.NoError(t, err)
	assert.Equal(t, "", starts)
	assert.NoError(t, CheckAllUsed(params))
}

func TestParseErrors(t *testing.T) {
	params := NewFromConfigString("width=wide,cell_size=big,ratio=x")
	_, err := GetParamOr(params, "width", 16)
	assert.ErrorContains(t, err, "width")
	_, err = GetParamOr(params, "cell_size", float32(45))
	assert.ErrorContains(t, err, "cell_size")

	// Failed parsing doesn't pop the parameter.
	_, err = PopParamOr(params, "width", 16)
	require.Error(t, err)
	assert.Contains(t, params, "width")
	assert.ErrorContains(t, CheckAllUsed(params), `["cell_size" "ratio" "width"]`)
}
