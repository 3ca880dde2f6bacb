package datapath

import (
	"fmt"

	"github.com/specialistvlad/pathforge/internal/chain"
	"github.com/specialistvlad/pathforge/internal/idmanager"
	"github.com/specialistvlad/pathforge/internal/planerr"
	"github.com/specialistvlad/pathforge/internal/task"
)

// expand turns every chain into one compute task per replica and connects
// each chain edge through a boxing task placed on the consumer's first
// device. Hops between machines go through a comm-net copy task on the
// receiving machine.
func expand(chains *chain.Graph, ids *idmanager.Manager) (*task.Graph, error) {
	g := task.NewGraph()
	computes := make([][]*task.Node, chains.Len())

	for _, c := range chains.Nodes() {
		for r := range c.Devices {
			n := task.NewCompute(c, r, ids.NewTaskID(c.Devices[r]))
			g.AddNode(n)
			computes[c.ID] = append(computes[c.ID], n)
		}
	}

	for _, e := range chains.Edges() {
		from, to := computes[e[0]], computes[e[1]]
		if len(from) == 0 || len(to) == 0 {
			continue
		}
		fromNode, _ := chains.Node(e[0])
		toNode, _ := chains.Node(e[1])
		link := task.Link{From: e[0], To: e[1]}

		dev := to[0].Device
		box := task.NewAux(task.KindBoxing, fmt.Sprintf("box:%s->%s", fromNode.Name, toNode.Name), link, dev, ids.NewTaskID(dev))
		g.AddNode(box)

		for _, p := range from {
			if err := connect(g, ids, p, box, link); err != nil {
				return nil, err
			}
		}
		for _, c := range to {
			if err := connect(g, ids, box, c, link); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// connect adds from -> to, inserting a comm-net copy on the receiving machine
// when the two tasks live on different machines.
func connect(g *task.Graph, ids *idmanager.Manager, from, to *task.Node, link task.Link) error {
	if from.Device.Machine == to.Device.Machine {
		return wrapEdge(g.AddEdge(from, to), from, to)
	}
	dev := to.Device
	cp := task.NewAux(task.KindCopyCommNet, fmt.Sprintf("copy:%s->%s", from.Device.MachineName, dev.MachineName), link, dev, ids.NewTaskID(dev))
	g.AddNode(cp)
	if err := g.AddEdge(from, cp); err != nil {
		return wrapEdge(err, from, cp)
	}
	return wrapEdge(g.AddEdge(cp, to), cp, to)
}

func wrapEdge(err error, from, to *task.Node) error {
	if err == nil {
		return nil
	}
	return planerr.Wrap(planerr.ErrStructural, err, "connecting %s to %s", from, to)
}
