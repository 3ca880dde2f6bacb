package task

import (
	"github.com/specialistvlad/pathforge/internal/chain"
	"github.com/specialistvlad/pathforge/internal/dag"
)

// Graph owns every task node. Nodes are reported in insertion order.
type Graph struct {
	edges *dag.Graph
	nodes map[string]*Node
}

// NewGraph returns an empty task graph.
func NewGraph() *Graph {
	return &Graph{
		edges: dag.New(),
		nodes: make(map[string]*Node),
	}
}

// AddNode inserts n. Adding a node whose ID is already present replaces
// nothing and is ignored.
func (g *Graph) AddNode(n *Node) {
	k := n.ID.String()
	if _, ok := g.nodes[k]; ok {
		return
	}
	g.nodes[k] = n
	g.edges.AddNode(k)
}

// RemoveNode deletes n and its edges.
func (g *Graph) RemoveNode(n *Node) {
	k := n.ID.String()
	delete(g.nodes, k)
	g.edges.RemoveNode(k)
}

// AddEdge records that to consumes the output of from.
func (g *Graph) AddEdge(from, to *Node) error {
	return g.edges.AddEdge(from.ID.String(), to.ID.String())
}

// HasEdge reports whether from feeds to directly.
func (g *Graph) HasEdge(from, to *Node) bool {
	return g.edges.HasEdge(from.ID.String(), to.ID.String())
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return g.edges.EdgeCount() }

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []*Node {
	return g.lookup(g.edges.Nodes())
}

// Predecessors returns the nodes feeding n in insertion order.
func (g *Graph) Predecessors(n *Node) []*Node {
	ids, err := g.edges.Dependencies(n.ID.String())
	if err != nil {
		return nil
	}
	return g.lookup(ids)
}

// Successors returns the nodes fed by n in insertion order.
func (g *Graph) Successors(n *Node) []*Node {
	ids, err := g.edges.Dependents(n.ID.String())
	if err != nil {
		return nil
	}
	return g.lookup(ids)
}

// TopologicalOrder returns every node after all of its predecessors.
func (g *Graph) TopologicalOrder() ([]*Node, error) {
	ids, err := g.edges.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	return g.lookup(ids), nil
}

// ComputeNodes returns the compute nodes in insertion order.
func (g *Graph) ComputeNodes() []*Node {
	var out []*Node
	for _, n := range g.Nodes() {
		if n.IsCompute() {
			out = append(out, n)
		}
	}
	return out
}

// ComputeNodesByChain groups compute nodes by their originating chain in a
// single pass over the graph. Other kinds are skipped. Within a group nodes
// keep insertion order; use SortByParallelID to order them by rank.
func (g *Graph) ComputeNodesByChain() map[chain.ID][]*Node {
	out := make(map[chain.ID][]*Node)
	for _, n := range g.Nodes() {
		if n.Kind != KindCompute {
			continue
		}
		out[n.Chain] = append(out[n.Chain], n)
	}
	return out
}

// CountByKind returns the number of nodes of each kind.
func (g *Graph) CountByKind() map[Kind]int {
	out := make(map[Kind]int, 3)
	for _, n := range g.nodes {
		out[n.Kind]++
	}
	return out
}

func (g *Graph) lookup(ids []string) []*Node {
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := g.nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out
}
