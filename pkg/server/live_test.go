package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryForgetKeepsNewerEntry(t *testing.T) {
	r := newRegistry()

	stale := r.acquire("s1")
	r.forget("s1", stale)
	r.release(stale)
	require.Equal(t, 0, r.Len())

	fresh := r.acquire("s1")
	r.release(fresh)

	// A request still holding the dropped entry finishes late.
	r.forget("s1", stale)
	assert.Equal(t, 1, r.Len())

	got := r.acquire("s1")
	r.release(got)
	assert.Same(t, fresh, got)

	r.forget("s1", fresh)
	assert.Equal(t, 0, r.Len())
}

func TestRegistryRetain(t *testing.T) {
	r := newRegistry()
	for _, id := range []string{"a", "b", "c"} {
		r.release(r.acquire(id))
	}
	assert.Equal(t, 2, r.retain([]string{"b"}))
	assert.Equal(t, 1, r.Len())
}
