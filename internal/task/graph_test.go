package task

import (
	"testing"

	"github.com/specialistvlad/pathforge/internal/chain"
	"github.com/specialistvlad/pathforge/internal/idmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compute(id uint64, c chain.ID, rank int) *Node {
	return &Node{ID: idmanager.TaskID(id), Kind: KindCompute, Name: "c", Chain: c, ParallelID: rank}
}

func boxing(id uint64, from, to chain.ID) *Node {
	return NewAux(KindBoxing, "box", Link{From: from, To: to}, idmanager.Device{}, idmanager.TaskID(id))
}

func TestGraph(t *testing.T) {
	g := NewGraph()
	a0, a1 := compute(1, 0, 0), compute(2, 0, 1)
	box := boxing(3, 0, 1)
	b0 := compute(4, 1, 0)
	for _, n := range []*Node{a0, a1, box, b0} {
		g.AddNode(n)
	}
	g.AddNode(a0)
	require.Equal(t, 4, g.Len())

	require.NoError(t, g.AddEdge(a0, box))
	require.NoError(t, g.AddEdge(a1, box))
	require.NoError(t, g.AddEdge(box, b0))

	assert.Equal(t, []*Node{a0, a1, box, b0}, g.Nodes())
	assert.Equal(t, []*Node{a0, a1}, g.Predecessors(box))
	assert.Equal(t, []*Node{b0}, g.Successors(box))
	assert.Equal(t, map[Kind]int{KindCompute: 3, KindBoxing: 1}, g.CountByKind())

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, b0, order[len(order)-1])

	g.RemoveNode(box)
	assert.Equal(t, 3, g.Len())
	assert.Zero(t, g.EdgeCount())
	assert.False(t, g.HasEdge(a0, box))
}

func TestComputeNodesByChain(t *testing.T) {
	g := NewGraph()
	g.AddNode(compute(1, 0, 1))
	g.AddNode(boxing(2, 0, 1))
	g.AddNode(compute(3, 1, 0))
	g.AddNode(compute(4, 0, 0))

	groups := g.ComputeNodesByChain()
	require.Len(t, groups, 2)
	require.Len(t, groups[0], 2)
	assert.Equal(t, 1, groups[0][0].ParallelID, "groups keep insertion order")
	assert.Len(t, groups[1], 1)

	total := 0
	for _, nodes := range groups {
		for _, n := range nodes {
			assert.Equal(t, KindCompute, n.Kind)
			total++
		}
	}
	assert.Equal(t, len(g.ComputeNodes()), total)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "compute", KindCompute.String())
	assert.Equal(t, "boxing", KindBoxing.String())
	assert.Equal(t, "copy_comm_net", KindCopyCommNet.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
