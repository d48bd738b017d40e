package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetGetDelete(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("recommender.neighbors", 7))
	val, ok := store.Get("recommender.neighbors")
	require.True(t, ok)
	assert.Equal(t, 7, val)

	require.NoError(t, store.Delete("recommender.neighbors"))
	_, ok = store.Get("recommender.neighbors")
	assert.False(t, ok)

	// deleting again is fine
	assert.NoError(t, store.Delete("recommender.neighbors"))
}

func TestConfigStore_NoBackingFile(t *testing.T) {
	store := NewConfigStore()

	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}
