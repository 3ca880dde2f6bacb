package task

import (
	"fmt"

	"github.com/specialistvlad/pathforge/internal/chain"
	"github.com/specialistvlad/pathforge/internal/idmanager"
)

// Kind discriminates task node variants.
type Kind int

const (
	// KindCompute runs the ops of one chain on one device.
	KindCompute Kind = iota + 1
	// KindBoxing redistributes the outputs of one chain to the replicas of
	// its consumer.
	KindBoxing
	// KindCopyCommNet copies data between machines.
	KindCopyCommNet
)

func (k Kind) String() string {
	switch k {
	case KindCompute:
		return "compute"
	case KindBoxing:
		return "boxing"
	case KindCopyCommNet:
		return "copy_comm_net"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Link names the chain edge an auxiliary node serves.
type Link struct {
	From chain.ID
	To   chain.ID
}

// Node is a single task.
type Node struct {
	ID     idmanager.TaskID
	Kind   Kind
	Name   string
	Device idmanager.Device

	// Chain is the originating chain of a compute node. It is a back
	// reference only; the chain graph owns the chain.
	Chain chain.ID
	// ParallelID is the replica rank of a compute node and -1 otherwise.
	ParallelID int
	// Link is set on boxing and comm-net nodes.
	Link Link
}

// IsCompute reports whether n is a compute task.
func (n *Node) IsCompute() bool { return n != nil && n.Kind == KindCompute }

func (n *Node) String() string {
	if n.IsCompute() {
		return fmt.Sprintf("%s[%d]@%s", n.Name, n.ParallelID, n.Device)
	}
	return fmt.Sprintf("%s(%s)@%s", n.Name, n.Kind, n.Device)
}

// NewCompute returns a compute node for one replica of c.
func NewCompute(c *chain.Node, parallelID int, id idmanager.TaskID) *Node {
	return &Node{
		ID:         id,
		Kind:       KindCompute,
		Name:       c.Name,
		Device:     c.Devices[parallelID],
		Chain:      c.ID,
		ParallelID: parallelID,
	}
}

// NewAux returns a boxing or comm-net node serving the chain edge l.
func NewAux(kind Kind, name string, l Link, d idmanager.Device, id idmanager.TaskID) *Node {
	return &Node{
		ID:         id,
		Kind:       kind,
		Name:       name,
		Device:     d,
		Chain:      l.To,
		ParallelID: -1,
		Link:       l,
	}
}
