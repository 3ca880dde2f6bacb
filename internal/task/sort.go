package task

import (
	"sort"

	"github.com/specialistvlad/pathforge/internal/planerr"
)

// SortByParallelID orders the compute tasks of one chain by ascending
// parallel rank, in place. Ranks must be unique and cover 0..len-1; anything
// else means the task graph was built incorrectly and is reported as a
// structural error rather than tolerated.
func SortByParallelID(nodes []*Node) error {
	if len(nodes) == 0 {
		return nil
	}

	owner := nodes[0].Chain
	for _, n := range nodes {
		if !n.IsCompute() {
			return planerr.Structuralf("task %s is not a compute task", n)
		}
		if n.Chain != owner {
			return planerr.Structuralf("tasks of chains %d and %d mixed in one group", owner, n.Chain)
		}
	}

	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].ParallelID < nodes[j].ParallelID })

	for i, n := range nodes {
		switch {
		case i > 0 && nodes[i-1].ParallelID == n.ParallelID:
			return planerr.Structuralf("tasks %s and %s share parallel id %d", nodes[i-1], n, n.ParallelID)
		case n.ParallelID != i:
			return planerr.Structuralf("parallel ids are not contiguous from 0: position %d holds %d", i, n.ParallelID)
		}
	}
	return nil
}

// IsSortedByParallelID reports whether nodes already satisfy the order
// SortByParallelID establishes.
func IsSortedByParallelID(nodes []*Node) bool {
	for i, n := range nodes {
		if !n.IsCompute() || n.ParallelID != i {
			return false
		}
	}
	return true
}
