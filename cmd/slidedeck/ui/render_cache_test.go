package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCache_GetOrCompute(t *testing.T) {
	rc := NewRenderCache(4)
	key := ComputeKey("001", []byte("<p>x</p>"), 80, "light")

	calls := 0
	compute := func() (string, error) {
		calls++
		return "rendered", nil
	}

	got, err := rc.GetOrCompute(key, compute)
	require.NoError(t, err)
	assert.Equal(t, "rendered", got)

	got, err = rc.GetOrCompute(key, compute)
	require.NoError(t, err)
	assert.Equal(t, "rendered", got)
	assert.Equal(t, 1, calls)
}

func TestRenderCache_ErrorsAreNotCached(t *testing.T) {
	rc := NewRenderCache(4)
	boom := errors.New("boom")

	_, err := rc.GetOrCompute(1, func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, rc.Len())
}

func TestRenderCache_EvictsOldest(t *testing.T) {
	rc := NewRenderCache(2)
	rc.Set(1, "a")
	rc.Set(2, "b")
	rc.Set(1, "a2") // overwrite keeps position
	rc.Set(3, "c")

	_, ok := rc.Get(1)
	assert.False(t, ok)
	v, ok := rc.Get(2)
	assert.True(t, ok)
	assert.Equal(t, "b", v)
	assert.Equal(t, 2, rc.Len())

	rc.Clear()
	assert.Equal(t, 0, rc.Len())
}

func TestComputeKey(t *testing.T) {
	base := ComputeKey("001", []byte("body"), 80, "light")
	assert.Equal(t, base, ComputeKey("001", []byte("body"), 80, "light"))
	assert.NotEqual(t, base, ComputeKey("002", []byte("body"), 80, "light"))
	assert.NotEqual(t, base, ComputeKey("001", []byte("body!"), 80, "light"))
	assert.NotEqual(t, base, ComputeKey("001", []byte("body"), 81, "light"))
	assert.NotEqual(t, base, ComputeKey("001", []byte("body"), 80, "dark"))
}
