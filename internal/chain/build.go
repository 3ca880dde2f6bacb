package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/pathforge/internal/config"
	"github.com/specialistvlad/pathforge/internal/ctxlog"
	"github.com/specialistvlad/pathforge/internal/dag"
	"github.com/specialistvlad/pathforge/internal/idmanager"
	"github.com/specialistvlad/pathforge/internal/planerr"
)

// Build partitions the network into chains according to the strategy. The
// identifier service must already be initialized; it resolves the device list
// of every placement.
func Build(ctx context.Context, net *config.Network, strat *config.Strategy, ids *idmanager.Manager) (*Graph, error) {
	logger := ctxlog.FromContext(ctx).With("component", "chain.Build")

	if net == nil || len(net.Ops) == 0 {
		return nil, planerr.Structuralf("network declares no ops")
	}
	if strat == nil || len(strat.Placements) == 0 {
		return nil, planerr.Configurationf("strategy declares no placements")
	}

	opGraph, err := buildOpGraph(net)
	if err != nil {
		return nil, err
	}

	placementOf, err := assignPlacements(net, strat)
	if err != nil {
		return nil, err
	}

	// Union ops that share a placement and a data edge.
	opIndex := net.OpIndex()
	sets := newDisjointSet(len(net.Ops))
	for i, op := range net.Ops {
		for _, in := range op.Inputs {
			j := opIndex[in]
			if placementOf[i] == placementOf[j] {
				sets.union(i, j)
			}
		}
	}

	g := &Graph{
		edges:   dag.New(),
		opChain: make(map[string]ID, len(net.Ops)),
	}

	resolved := make(map[*config.Placement]*resolvedPlacement, len(strat.Placements))
	rootChain := make(map[int]ID)
	perPlacement := make(map[*config.Placement][]ID)

	for i, op := range net.Ops {
		root := sets.find(i)
		id, seen := rootChain[root]
		if !seen {
			p := placementOf[i]
			rp, ok := resolved[p]
			if !ok {
				rp, err = resolvePlacement(p, ids)
				if err != nil {
					return nil, err
				}
				resolved[p] = rp
			}

			id = ID(len(g.nodes))
			rootChain[root] = id
			g.nodes = append(g.nodes, &Node{
				ID:        id,
				Placement: p.Name,
				Devices:   append([]idmanager.Device(nil), rp.devices...),
				Policy:    rp.policy,
				Reduce:    rp.reduce,
			})
			g.edges.AddNode(key(id))
			perPlacement[p] = append(perPlacement[p], id)
		}
		n := g.nodes[id]
		n.Ops = append(n.Ops, op.Name)
		n.Trainable = n.Trainable || op.Trainable
		g.opChain[op.Name] = id
	}

	for _, p := range strat.Placements {
		members := perPlacement[p]
		for k, id := range members {
			if len(members) == 1 {
				g.nodes[id].Name = p.Name
			} else {
				g.nodes[id].Name = fmt.Sprintf("%s#%d", p.Name, k)
			}
		}
	}

	for _, n := range g.nodes {
		if !n.Trainable && len(n.Devices) == 0 {
			return nil, planerr.WithChain(planerr.Configurationf("placement %q assigns no devices", n.Placement), n.Name)
		}
	}

	// Cross-chain op edges become chain edges.
	for _, op := range net.Ops {
		to := g.opChain[op.Name]
		for _, in := range op.Inputs {
			from := g.opChain[in]
			if from == to {
				continue
			}
			if err := g.edges.AddEdge(key(from), key(to)); err != nil {
				return nil, planerr.Wrap(planerr.ErrStructural, err, "linking chain %s to %s", g.nodes[from].Name, g.nodes[to].Name)
			}
		}
	}
	if err := g.edges.DetectCycles(); err != nil {
		return nil, planerr.Wrap(planerr.ErrStructural, err, "cycle not resolvable by chain partitioning")
	}

	logger.Debug("Chain graph built.", "op_count", opGraph.Len(), "chain_count", g.Len(), "edge_count", g.EdgeCount())
	return g, nil
}

// buildOpGraph validates op names and inputs and rejects cyclic networks.
func buildOpGraph(net *config.Network) (*dag.Graph, error) {
	ops := dag.New()
	for _, op := range net.Ops {
		if op == nil || op.Name == "" {
			return nil, planerr.Structuralf("network contains an op without a name")
		}
		if ops.HasNode(op.Name) {
			return nil, planerr.Structuralf("duplicate op %q", op.Name)
		}
		ops.AddNode(op.Name)
	}
	for _, op := range net.Ops {
		for _, in := range op.Inputs {
			if !ops.HasNode(in) {
				return nil, planerr.Structuralf("op %q consumes unknown op %q", op.Name, in)
			}
			if err := ops.AddEdge(in, op.Name); err != nil {
				return nil, planerr.Wrap(planerr.ErrStructural, err, "op %q", op.Name)
			}
		}
	}
	if err := ops.DetectCycles(); err != nil {
		if errors.Is(err, dag.ErrCycle) {
			return nil, planerr.Wrap(planerr.ErrStructural, err, "logical network is cyclic")
		}
		return nil, err
	}
	return ops, nil
}

// assignPlacements maps every op position to the placement that claims it.
func assignPlacements(net *config.Network, strat *config.Strategy) ([]*config.Placement, error) {
	opIndex := net.OpIndex()
	out := make([]*config.Placement, len(net.Ops))
	names := make(map[string]bool, len(strat.Placements))

	for _, p := range strat.Placements {
		if p == nil || p.Name == "" {
			return nil, planerr.Configurationf("strategy contains a placement without a name")
		}
		if names[p.Name] {
			return nil, planerr.Configurationf("duplicate placement %q", p.Name)
		}
		names[p.Name] = true
		if len(p.Ops) == 0 {
			return nil, planerr.Configurationf("placement %q lists no ops", p.Name)
		}
		for _, opName := range p.Ops {
			i, ok := opIndex[opName]
			if !ok {
				return nil, planerr.Configurationf("placement %q references unknown op %q", p.Name, opName)
			}
			if prev := out[i]; prev != nil {
				return nil, planerr.Configurationf("op %q is placed by both %q and %q", opName, prev.Name, p.Name)
			}
			out[i] = p
		}
	}

	for i, op := range net.Ops {
		if out[i] == nil {
			return nil, planerr.Configurationf("op %q is not covered by any placement", op.Name)
		}
	}
	return out, nil
}

type resolvedPlacement struct {
	devices []idmanager.Device
	policy  config.ParallelPolicy
	reduce  config.ReduceTopology
}

func resolvePlacement(p *config.Placement, ids *idmanager.Manager) (*resolvedPlacement, error) {
	policy, err := config.ParsePolicy(string(p.Policy))
	if err != nil {
		return nil, planerr.Wrap(planerr.ErrConfiguration, err, "placement %q", p.Name)
	}
	reduce, err := config.ParseReduce(string(p.Reduce))
	if err != nil {
		return nil, planerr.Wrap(planerr.ErrConfiguration, err, "placement %q", p.Name)
	}

	devices, err := ids.ResolveDevices(p.Devices)
	if err != nil {
		return nil, planerr.WithChain(err, p.Name)
	}
	seen := make(map[idmanager.DeviceID]bool, len(devices))
	for _, d := range devices {
		if seen[d.ID] {
			return nil, planerr.Configurationf("placement %q lists device %s more than once", p.Name, d)
		}
		seen[d.ID] = true
	}

	return &resolvedPlacement{devices: devices, policy: policy, reduce: reduce}, nil
}
