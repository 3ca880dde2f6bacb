package modelpath

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/pathforge/internal/chain"
	"github.com/specialistvlad/pathforge/internal/idmanager"
)

// PathKind names which of the three paths a graph is.
type PathKind string

const (
	PathUpdate PathKind = "update"
	PathLoad   PathKind = "load"
	PathSave   PathKind = "save"
)

// Kind is the role of a node inside a path graph.
type Kind int

const (
	KindDiffAcc Kind = iota + 1
	KindReduceScatter
	KindAllGather
	KindReduce
	KindBroadcast
	KindUpdate
	KindLoad
	KindSave
	KindCommit
)

var kindNames = map[Kind]string{
	KindDiffAcc:       "diff_acc",
	KindReduceScatter: "reduce_scatter",
	KindAllGather:     "all_gather",
	KindReduce:        "reduce",
	KindBroadcast:     "broadcast",
	KindUpdate:        "update",
	KindLoad:          "load",
	KindSave:          "save",
	KindCommit:        "commit",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Direction tells whether data flows from a compute task into the path or
// from the path into a compute task.
type Direction int

const (
	FromCompute Direction = iota + 1
	ToCompute
)

func (d Direction) String() string {
	switch d {
	case FromCompute:
		return "in"
	case ToCompute:
		return "out"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Node is one synchronization task of a path.
type Node struct {
	Index  int
	Kind   Kind
	Rank   int
	Step   int
	Device idmanager.Device
}

// Edge connects two nodes by index.
type Edge struct {
	From int
	To   int
}

// Attachment binds a path node to the compute task of one replica.
type Attachment struct {
	Node       int
	ParallelID int
	Direction  Direction
}

// Graph is the path built for one chain. The zero-node graph is valid and
// means the chain needs no such path.
type Graph struct {
	Kind        PathKind
	Chain       chain.ID
	nodes       []Node
	edges       []Edge
	attachments []Attachment
}

func newGraph(kind PathKind, id chain.ID) *Graph {
	return &Graph{Kind: kind, Chain: id}
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Empty reports whether the graph has no nodes.
func (g *Graph) Empty() bool { return len(g.nodes) == 0 }

// Nodes returns the nodes in creation order.
func (g *Graph) Nodes() []Node { return append([]Node(nil), g.nodes...) }

// Edges returns the edges in creation order.
func (g *Graph) Edges() []Edge { return append([]Edge(nil), g.edges...) }

// Attachments returns the compute attachments in creation order.
func (g *Graph) Attachments() []Attachment { return append([]Attachment(nil), g.attachments...) }

// CountByKind returns the number of nodes of each kind.
func (g *Graph) CountByKind() map[Kind]int {
	out := make(map[Kind]int)
	for _, n := range g.nodes {
		out[n.Kind]++
	}
	return out
}

// Signature renders the structure of the graph canonically. Two graphs with
// equal signatures have the same nodes, edges and attachments in the same
// order.
func (g *Graph) Signature() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s chain=%d nodes=%d\n", g.Kind, g.Chain, len(g.nodes))
	for _, n := range g.nodes {
		fmt.Fprintf(&sb, "n%d %s r%d s%d %s\n", n.Index, n.Kind, n.Rank, n.Step, n.Device)
	}
	for _, e := range g.edges {
		fmt.Fprintf(&sb, "e%d>%d\n", e.From, e.To)
	}
	for _, a := range g.attachments {
		fmt.Fprintf(&sb, "a%d %s p%d\n", a.Node, a.Direction, a.ParallelID)
	}
	return sb.String()
}

func (g *Graph) add(kind Kind, rank, step int, d idmanager.Device) int {
	idx := len(g.nodes)
	g.nodes = append(g.nodes, Node{Index: idx, Kind: kind, Rank: rank, Step: step, Device: d})
	return idx
}

func (g *Graph) link(from, to int) {
	g.edges = append(g.edges, Edge{From: from, To: to})
}

func (g *Graph) attach(node, parallelID int, dir Direction) {
	g.attachments = append(g.attachments, Attachment{Node: node, ParallelID: parallelID, Direction: dir})
}
