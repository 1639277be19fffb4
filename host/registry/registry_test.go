package registry

import (
	"testing"

	"github.com/lantern-dev/lanternhost/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndGet(t *testing.T) {
	reg := NewRegistry[string]()
	require.NoError(t, reg.Add(1, "alpha"))
	require.NoError(t, reg.Add(2, "beta"))

	got, ok := reg.Get(1)
	require.True(t, ok)
	assert.Equal(t, "alpha", got)
	assert.True(t, reg.Has(2))
	assert.False(t, reg.Has(3))
	assert.Equal(t, 2, reg.Len())
}

func TestStrictModeRejectsDuplicates(t *testing.T) {
	reg := NewRegistry[string]()
	require.NoError(t, reg.Add(1, "alpha"))
	err := reg.Add(1, "beta")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestLenientModeOverwrites(t *testing.T) {
	reg := NewRegistry[string](WithStrictMode(false))
	require.NoError(t, reg.Add(1, "alpha"))
	require.NoError(t, reg.Add(1, "beta"))

	got, ok := reg.Get(1)
	require.True(t, ok)
	assert.Equal(t, "beta", got)
}

func TestRemove(t *testing.T) {
	reg := NewRegistry[string]()
	require.NoError(t, reg.Add(1, "alpha"))
	assert.True(t, reg.Remove(1))
	assert.False(t, reg.Remove(1))
	assert.Equal(t, 0, reg.Len())
}

func TestActiveIDsSorted(t *testing.T) {
	reg := NewRegistry[string]()
	for _, id := range []entities.ChainID{5, 1, 3} {
		require.NoError(t, reg.Add(id, "x"))
	}
	assert.Equal(t, []entities.ChainID{1, 3, 5}, reg.ActiveIDs())
}

func TestAllFollowsHandleOrder(t *testing.T) {
	reg := NewRegistry[string]()
	require.NoError(t, reg.Add(2, "second"))
	require.NoError(t, reg.Add(1, "first"))
	assert.Equal(t, []string{"first", "second"}, reg.All())
}
