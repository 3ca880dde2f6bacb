package chain

import (
	"strconv"

	"github.com/specialistvlad/pathforge/internal/config"
	"github.com/specialistvlad/pathforge/internal/dag"
	"github.com/specialistvlad/pathforge/internal/idmanager"
)

// ID is the dense index of a chain inside its Graph.
type ID int

func (id ID) String() string { return strconv.Itoa(int(id)) }

// Node is one chain.
type Node struct {
	ID        ID
	Name      string
	Placement string
	// Ops holds the member op names in network declaration order.
	Ops []string
	// Devices is the parallel description: the position of a device is the
	// parallel rank of the replica placed on it.
	Devices   []idmanager.Device
	Policy    config.ParallelPolicy
	Reduce    config.ReduceTopology
	Trainable bool
}

// ParallelNum returns the number of replicas of the chain.
func (n *Node) ParallelNum() int { return len(n.Devices) }

// Graph is the ordered collection of chains and their producer/consumer edges.
type Graph struct {
	nodes   []*Node
	edges   *dag.Graph
	opChain map[string]ID
}

// Len returns the number of chains.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns every chain ordered by ID.
func (g *Graph) Nodes() []*Node {
	return append([]*Node(nil), g.nodes...)
}

// Node returns the chain with the given ID.
func (g *Graph) Node(id ID) (*Node, bool) {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil, false
	}
	return g.nodes[id], true
}

// ChainOf returns the chain that owns the named op.
func (g *Graph) ChainOf(op string) (ID, bool) {
	id, ok := g.opChain[op]
	return id, ok
}

// Producers returns the chains that feed id, ordered by ID.
func (g *Graph) Producers(id ID) []ID {
	deps, err := g.edges.Dependencies(key(id))
	if err != nil {
		return nil
	}
	return g.ids(deps)
}

// Consumers returns the chains fed by id, ordered by ID.
func (g *Graph) Consumers(id ID) []ID {
	deps, err := g.edges.Dependents(key(id))
	if err != nil {
		return nil
	}
	return g.ids(deps)
}

// HasEdge reports whether from feeds to directly.
func (g *Graph) HasEdge(from, to ID) bool {
	return g.edges.HasEdge(key(from), key(to))
}

// EdgeCount returns the number of chain edges.
func (g *Graph) EdgeCount() int { return g.edges.EdgeCount() }

// Edges returns every edge as a (producer, consumer) pair, ordered by
// producer and then consumer.
func (g *Graph) Edges() [][2]ID {
	var out [][2]ID
	for _, n := range g.nodes {
		for _, c := range g.Consumers(n.ID) {
			out = append(out, [2]ID{n.ID, c})
		}
	}
	return out
}

// TopologicalOrder returns chain IDs so that producers precede consumers.
func (g *Graph) TopologicalOrder() ([]ID, error) {
	order, err := g.edges.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	return g.ids(order), nil
}

// ids maps dag keys back to IDs. Keys are inserted in ID order, so the dag's
// insertion order is ID order.
func (g *Graph) ids(keys []string) []ID {
	out := make([]ID, 0, len(keys))
	for _, k := range keys {
		n, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		out = append(out, ID(n))
	}
	return out
}

func key(id ID) string { return id.String() }
