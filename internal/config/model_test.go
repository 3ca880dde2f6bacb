package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, DataParallel, p)

	p, err = ParsePolicy("model")
	require.NoError(t, err)
	assert.Equal(t, ModelParallel, p)

	_, err = ParsePolicy("pipeline")
	assert.ErrorContains(t, err, "unknown parallel policy")
}

func TestParseReduce(t *testing.T) {
	r, err := ParseReduce("")
	require.NoError(t, err)
	assert.Equal(t, ReduceRing, r)

	r, err = ParseReduce("tree")
	require.NoError(t, err)
	assert.Equal(t, ReduceTree, r)

	_, err = ParseReduce("butterfly")
	assert.Error(t, err)
}

func TestOpIndex(t *testing.T) {
	n := &Network{Ops: []*Op{{Name: "a"}, {Name: "b"}}}
	assert.Equal(t, map[string]int{"a": 0, "b": 1}, n.OpIndex())
}
