package datapath

import (
	"context"

	"github.com/specialistvlad/pathforge/internal/chain"
	"github.com/specialistvlad/pathforge/internal/planerr"
	"github.com/specialistvlad/pathforge/internal/task"
)

// Pass is a structural simplification of the data path. Run returns the
// number of edges or nodes it changed.
type Pass interface {
	Name() string
	Run(ctx context.Context, g *Graphs) (int, error)
}

// DefaultPasses returns the passes run on the expanded task graph, in order.
// Chain edges are never removed: every one carries data a consumer reads.
func DefaultPasses() []Pass {
	return []Pass{pruneRedundantBoxing{}}
}

// pruneRedundantBoxing replaces a boxing task with one-to-one edges when the
// producer and consumer chains share a parallel policy and run on the same
// devices in the same order. Every replica then already holds exactly the
// data its peer needs.
type pruneRedundantBoxing struct{}

func (pruneRedundantBoxing) Name() string { return "prune-redundant-boxing" }

func (pruneRedundantBoxing) Run(_ context.Context, g *Graphs) (int, error) {
	if g.Tasks == nil {
		return 0, planerr.Structuralf("prune-redundant-boxing needs a task graph")
	}
	computes := g.Tasks.ComputeNodesByChain()
	for _, nodes := range computes {
		if err := task.SortByParallelID(nodes); err != nil {
			return 0, err
		}
	}

	pruned := 0
	for _, box := range g.Tasks.Nodes() {
		if box.Kind != task.KindBoxing {
			continue
		}
		from, _ := g.Chains.Node(box.Link.From)
		to, _ := g.Chains.Node(box.Link.To)
		if from == nil || to == nil || !oneToOne(from, to) {
			continue
		}

		for _, n := range append(g.Tasks.Predecessors(box), g.Tasks.Successors(box)...) {
			if n.Kind == task.KindCopyCommNet && n.Link == box.Link {
				g.Tasks.RemoveNode(n)
			}
		}
		g.Tasks.RemoveNode(box)

		producers, consumers := computes[from.ID], computes[to.ID]
		for r := range producers {
			if err := g.Tasks.AddEdge(producers[r], consumers[r]); err != nil {
				return pruned, planerr.Wrap(planerr.ErrStructural, err, "rewiring %s", box)
			}
		}
		pruned++
	}
	return pruned, nil
}

// oneToOne reports whether replica r of a can feed replica r of b alone. A
// data-parallel producer feeding a model-parallel consumer is excluded: every
// shard needs the output of every replica.
func oneToOne(a, b *chain.Node) bool {
	if a.Policy != b.Policy {
		return false
	}
	if len(a.Devices) != len(b.Devices) {
		return false
	}
	for i := range a.Devices {
		if a.Devices[i].ID != b.Devices[i].ID {
			return false
		}
	}
	return true
}
