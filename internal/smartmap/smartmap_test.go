package smartmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAndHasOnEmptyMap(t *testing.T) {
	m := New[string, int]()
	_, ok := m.Get("x")
	assert.False(t, ok)
	assert.False(t, m.Has("x"))
	assert.Equal(t, 0, m.Len())
}

func TestSetThenGet(t *testing.T) {
	m := New[string, int]()
	m.Set("x", 1)

	v, ok := m.Get("x")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.True(t, m.Has("x"))
	assert.Equal(t, 1, m.Len())
}

// OriginalKey keeps returning the first key stored under an equality
// class even after Set overwrites the value under the same key again.
func TestOriginalKeyKeepsFirstInsertedKey(t *testing.T) {
	m := New[string, string]()

	m.Set("café", "first")
	orig, ok := m.OriginalKey("café")
	require.True(t, ok)
	assert.Equal(t, "café", orig)

	m.Set("café", "second")
	v, _ := m.Get("café")
	assert.Equal(t, "second", v, "Set overwrites the value")

	orig, ok = m.OriginalKey("café")
	require.True(t, ok)
	assert.Equal(t, "café", orig, "the original key mapping is unaffected by re-Set")
}

func TestKeysPreservesInsertionOrder(t *testing.T) {
	m := New[string, int]()
	m.Set("c", 3)
	m.Set("a", 1)
	m.Set("b", 2)

	assert.Equal(t, []string{"c", "a", "b"}, m.Keys())
}

func TestSetOnExistingKeyDoesNotDuplicateOrderEntry(t *testing.T) {
	m := New[string, int]()
	m.Set("x", 1)
	m.Set("x", 2)

	assert.Equal(t, 1, m.Len())
	assert.Equal(t, []string{"x"}, m.Keys())
}

func TestOriginalKeyUnknownKey(t *testing.T) {
	m := New[int, string]()
	_, ok := m.OriginalKey(42)
	assert.False(t, ok)
}
