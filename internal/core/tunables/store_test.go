package tunables

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParameters(t *testing.T) {
	params := DefaultParameters()
	require.Len(t, params, 5)

	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Name)
		assert.Equal(t, 0.5, p.Value)
		assert.Equal(t, 0.0, p.Min)
		assert.Equal(t, 1.0, p.Max)
	}

	assert.Contains(t, names, "coherence_gain")
	assert.Contains(t, names, "efficiency_gain")
}

func TestClampDelta(t *testing.T) {
	tests := []struct {
		delta    float64
		expected float64
	}{
		{0.05, 0.05},
		{0.1, 0.1},
		{0.3, 0.1},
		{-0.05, -0.05},
		{-0.3, -0.1},
		{0, 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, clampDelta(tt.delta), 1e-9)
	}
}

func TestMemoryStoreGet(t *testing.T) {
	store := NewMemoryStore(DefaultParameters()...)
	ctx := context.Background()

	param, err := store.Get(ctx, "resonance_gain")
	require.NoError(t, err)
	assert.Equal(t, 0.5, param.Value)

	_, err = store.Get(ctx, "unknown_gain")
	assert.Error(t, err)
}

func TestMemoryStoreSetClampsToBounds(t *testing.T) {
	store := NewMemoryStore(DefaultParameters()...)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "harmony_gain", 1.7))
	param, err := store.Get(ctx, "harmony_gain")
	require.NoError(t, err)
	assert.Equal(t, 1.0, param.Value)

	require.NoError(t, store.Set(ctx, "harmony_gain", -0.2))
	param, err = store.Get(ctx, "harmony_gain")
	require.NoError(t, err)
	assert.Equal(t, 0.0, param.Value)
}

func TestMemoryStoreAdjust(t *testing.T) {
	store := NewMemoryStore(DefaultParameters()...)
	ctx := context.Background()

	param, err := store.Adjust(ctx, "coherence_gain", 0.05)
	require.NoError(t, err)
	assert.InDelta(t, 0.55, param.Value, 1e-9)

	// Oversized delta is capped at the max adjustment rate
	param, err = store.Adjust(ctx, "coherence_gain", 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.65, param.Value, 1e-9)

	_, err = store.Adjust(ctx, "unknown_gain", 0.1)
	assert.Error(t, err)
}

func TestMemoryStoreAdjustRespectsBounds(t *testing.T) {
	store := NewMemoryStore(Parameter{Name: "gain", Value: 0.95, Min: 0, Max: 1})
	ctx := context.Background()

	param, err := store.Adjust(ctx, "gain", 0.1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, param.Value)
}

func TestMemoryStoreList(t *testing.T) {
	store := NewMemoryStore(DefaultParameters()...)

	params, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, params, 5)
}
