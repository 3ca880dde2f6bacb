package datapath

import (
	"github.com/specialistvlad/pathforge/internal/chain"
	"github.com/specialistvlad/pathforge/internal/planerr"
	"github.com/specialistvlad/pathforge/internal/task"
)

// VerifyPartition checks that compute tasks partition cleanly over chains:
// every compute task references an existing chain, and every chain owns
// exactly one task per device with ranks 0..n-1.
func VerifyPartition(chains *chain.Graph, tasks *task.Graph) error {
	type slot struct {
		chain chain.ID
		rank  int
	}
	seen := make(map[slot]bool)
	counts := make(map[chain.ID]int)

	for _, n := range tasks.ComputeNodes() {
		c, ok := chains.Node(n.Chain)
		if !ok {
			return planerr.Structuralf("compute task %s references unknown chain %d", n, n.Chain)
		}
		if n.ParallelID < 0 || n.ParallelID >= c.ParallelNum() {
			return planerr.WithChain(planerr.Structuralf("compute task %s has rank %d outside 0..%d", n, n.ParallelID, c.ParallelNum()-1), c.Name)
		}
		s := slot{n.Chain, n.ParallelID}
		if seen[s] {
			return planerr.WithChain(planerr.Structuralf("rank %d is assigned twice", n.ParallelID), c.Name)
		}
		seen[s] = true
		counts[n.Chain]++
	}

	for _, c := range chains.Nodes() {
		if counts[c.ID] != c.ParallelNum() {
			return planerr.WithChain(planerr.Structuralf("chain has %d compute tasks, want %d", counts[c.ID], c.ParallelNum()), c.Name)
		}
	}
	return nil
}
