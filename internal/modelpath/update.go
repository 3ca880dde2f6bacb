package modelpath

import (
	"github.com/specialistvlad/pathforge/internal/chain"
	"github.com/specialistvlad/pathforge/internal/config"
	"github.com/specialistvlad/pathforge/internal/idmanager"
	"github.com/specialistvlad/pathforge/internal/planerr"
	"github.com/specialistvlad/pathforge/internal/task"
)

// BuildUpdate builds the update path of c from its compute tasks, which must
// be sorted by parallel rank. The rank order decides ring neighbours and tree
// parents.
func BuildUpdate(c *chain.Node, sorted []*task.Node) (*Graph, error) {
	g := newGraph(PathUpdate, c.ID)
	if !c.Trainable {
		return g, nil
	}
	if len(sorted) == 0 {
		return nil, planerr.WithChain(planerr.Configurationf("trainable chain has no replicas to update"), c.Name)
	}
	for _, n := range sorted {
		if !n.IsCompute() || n.Chain != c.ID {
			return nil, planerr.WithChain(planerr.Structuralf("task %s does not belong to the chain", n), c.Name)
		}
	}
	if !task.IsSortedByParallelID(sorted) {
		return nil, planerr.WithChain(planerr.Structuralf("compute tasks are not sorted by parallel id"), c.Name)
	}
	if len(sorted) != c.ParallelNum() {
		return nil, planerr.WithChain(planerr.Structuralf("got %d compute tasks for %d replicas", len(sorted), c.ParallelNum()), c.Name)
	}

	devs := make([]idmanager.Device, len(sorted))
	for i, n := range sorted {
		devs[i] = n.Device
	}

	switch {
	case c.Policy == config.ModelParallel:
		buildIndependent(g, devs)
	case c.Reduce == config.ReduceTree:
		buildTree(g, devs)
	default:
		buildRing(g, devs)
	}
	return g, nil
}

// diffAcc adds one gradient accumulator per replica fed by its compute task.
func diffAcc(g *Graph, devs []idmanager.Device) []int {
	acc := make([]int, len(devs))
	for r, d := range devs {
		acc[r] = g.add(KindDiffAcc, r, 0, d)
		g.attach(acc[r], r, FromCompute)
	}
	return acc
}

// buildIndependent gives every model-parallel replica its own update.
func buildIndependent(g *Graph, devs []idmanager.Device) {
	acc := diffAcc(g, devs)
	for r, d := range devs {
		up := g.add(KindUpdate, r, 0, d)
		g.link(acc[r], up)
		g.attach(up, r, ToCompute)
	}
}

// buildRing lays out a ring all-reduce: N-1 reduce-scatter steps, a local
// update per replica, then N-1 all-gather steps. At every step replica r
// receives from its ring neighbour r-1.
func buildRing(g *Graph, devs []idmanager.Device) {
	n := len(devs)
	prev := diffAcc(g, devs)

	stage := func(kind Kind, step int) {
		cur := make([]int, n)
		for r, d := range devs {
			cur[r] = g.add(kind, r, step, d)
		}
		for r := range devs {
			g.link(prev[r], cur[r])
			g.link(prev[(r-1+n)%n], cur[r])
		}
		prev = cur
	}

	for s := 0; s < n-1; s++ {
		stage(KindReduceScatter, s)
	}

	updates := make([]int, n)
	for r, d := range devs {
		updates[r] = g.add(KindUpdate, r, 0, d)
		g.link(prev[r], updates[r])
	}
	prev = updates

	for s := 0; s < n-1; s++ {
		stage(KindAllGather, s)
	}
	for r := range devs {
		g.attach(prev[r], r, ToCompute)
	}
}

// buildTree reduces pairwise toward rank 0, updates there, and broadcasts
// the result back down the same binary tree.
func buildTree(g *Graph, devs []idmanager.Device) {
	n := len(devs)
	holder := diffAcc(g, devs)

	for level, stride := 0, 1; stride < n; level, stride = level+1, stride*2 {
		for r := 0; r+stride < n; r += 2 * stride {
			red := g.add(KindReduce, r, level, devs[r])
			g.link(holder[r], red)
			g.link(holder[r+stride], red)
			holder[r] = red
		}
	}

	root := g.add(KindUpdate, 0, 0, devs[0])
	g.link(holder[0], root)
	g.attach(root, 0, ToCompute)

	bcast := make([]int, n)
	bcast[0] = root
	for r := 1; r < n; r++ {
		parent := r & (r - 1)
		bcast[r] = g.add(KindBroadcast, r, 0, devs[r])
		g.link(bcast[parent], bcast[r])
		g.attach(bcast[r], r, ToCompute)
	}
}
