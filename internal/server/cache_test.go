package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	gocas "github.com/njchilds90/gocas"
)

func TestCache_EvictsOldestFirst(t *testing.T) {
	c := NewCache(2)
	k := func(fp uint64) cacheKey { return cacheKey{tool: "diff", fp: fp} }

	c.put(k(1), gocas.ToolResponse{String: "one"})
	c.put(k(2), gocas.ToolResponse{String: "two"})
	c.put(k(3), gocas.ToolResponse{String: "three"})

	_, ok := c.get(k(1))
	assert.False(t, ok, "oldest entry should be evicted")
	r, ok := c.get(k(3))
	assert.True(t, ok)
	assert.Equal(t, "three", r.String)
	assert.Equal(t, 2, c.Len())
}

func TestCache_OverwriteKeepsSize(t *testing.T) {
	c := NewCache(2)
	key := cacheKey{tool: "simplify", fp: 7}
	c.put(key, gocas.ToolResponse{String: "a"})
	c.put(key, gocas.ToolResponse{String: "b"})

	r, _ := c.get(key)
	assert.Equal(t, "b", r.String)
	assert.Equal(t, 1, c.Len())
}

func TestCache_ZeroSizeDisables(t *testing.T) {
	c := NewCache(0)
	c.put(cacheKey{tool: "diff"}, gocas.ToolResponse{})
	assert.Equal(t, 0, c.Len())
}
