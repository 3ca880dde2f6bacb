package datapath

import (
	"context"
	"testing"

	"github.com/specialistvlad/pathforge/internal/config"
	"github.com/specialistvlad/pathforge/internal/idmanager"
	"github.com/specialistvlad/pathforge/internal/planerr"
	"github.com/specialistvlad/pathforge/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIDs(t *testing.T) *idmanager.Manager {
	t.Helper()
	ids := idmanager.New()
	require.NoError(t, ids.Init(&config.Resource{Machines: []*config.Machine{
		{Name: "node0", DeviceType: "gpu", DeviceCount: 4},
		{Name: "node1", DeviceType: "gpu", DeviceCount: 4},
	}}))
	return ids
}

// pipeline returns a -> b -> c with a and b sharing devices and c on node1.
func pipeline() (*config.Network, *config.Strategy) {
	net := &config.Network{Ops: []*config.Op{
		{Name: "a"},
		{Name: "b", Inputs: []string{"a"}, Trainable: true},
		{Name: "c", Inputs: []string{"a", "b"}, Trainable: true},
	}}
	strat := &config.Strategy{Placements: []*config.Placement{
		{Name: "pa", Ops: []string{"a"}, Devices: []string{"node0.gpu[0]", "node0.gpu[1]"}},
		{Name: "pb", Ops: []string{"b"}, Devices: []string{"node0.gpu[0]", "node0.gpu[1]"}},
		{Name: "pc", Ops: []string{"c"}, Devices: []string{"node1.gpu[0]"}},
	}}
	return net, strat
}

func TestBuild_SingleChainFourReplicas(t *testing.T) {
	net := &config.Network{Ops: []*config.Op{{Name: "w", Trainable: true}}}
	strat := &config.Strategy{Placements: []*config.Placement{
		{Name: "p", Ops: []string{"w"}, Devices: []string{"node0.gpu"}},
	}}

	dp, err := Build(context.Background(), net, strat, newIDs(t), true)
	require.NoError(t, err)

	require.Equal(t, 1, dp.ChainGraph().Len())
	computes := dp.TaskGraph().ComputeNodes()
	require.Len(t, computes, 4)
	for r, n := range computes {
		assert.Equal(t, r, n.ParallelID)
		assert.EqualValues(t, 0, n.Chain)
	}
	assert.Equal(t, 4, dp.TaskGraph().Len())
}

func TestBuild_NaiveExpansion(t *testing.T) {
	net, strat := pipeline()
	dp, err := Build(context.Background(), net, strat, newIDs(t), false)
	require.NoError(t, err)
	assert.Empty(t, dp.Passes())

	counts := dp.TaskGraph().CountByKind()
	assert.Equal(t, 5, counts[task.KindCompute])
	assert.Equal(t, 3, counts[task.KindBoxing], "one boxing task per chain edge including the transitive one")
	// a->c and b->c each cross from node0 to node1 once per producer replica.
	assert.Equal(t, 4, counts[task.KindCopyCommNet])

	for _, n := range dp.TaskGraph().Nodes() {
		if n.Kind != task.KindCopyCommNet {
			continue
		}
		assert.Equal(t, "node1", n.Device.MachineName, "copies live on the receiving machine")
	}
}

func TestBuild_Optimized(t *testing.T) {
	net, strat := pipeline()
	dp, err := Build(context.Background(), net, strat, newIDs(t), true)
	require.NoError(t, err)

	assert.Equal(t, []PassResult{{Name: "prune-redundant-boxing", Changed: 1}}, dp.Passes())
	assert.True(t, dp.ChainGraph().HasEdge(0, 2), "c reads a directly, the edge stays")
	assert.Equal(t, 3, dp.ChainGraph().EdgeCount())

	tg := dp.TaskGraph()
	counts := tg.CountByKind()
	assert.Equal(t, 5, counts[task.KindCompute])
	assert.Equal(t, 2, counts[task.KindBoxing], "only the a->b boxing task is pruned")
	assert.Equal(t, 4, counts[task.KindCopyCommNet])

	groups := tg.ComputeNodesByChain()
	for r := 0; r < 2; r++ {
		assert.True(t, tg.HasEdge(groups[0][r], groups[1][r]), "replica %d is wired one-to-one", r)
	}
	assert.False(t, tg.HasEdge(groups[0][0], groups[1][1]))
}

func TestBuild_EveryCrossChainInputIsCarried(t *testing.T) {
	for _, optimize := range []bool{false, true} {
		net, strat := pipeline()
		dp, err := Build(context.Background(), net, strat, newIDs(t), optimize)
		require.NoError(t, err)

		cg, tg := dp.ChainGraph(), dp.TaskGraph()
		groups := tg.ComputeNodesByChain()
		for _, op := range net.Ops {
			to, _ := cg.ChainOf(op.Name)
			for _, in := range op.Inputs {
				from, _ := cg.ChainOf(in)
				if from == to {
					continue
				}
				require.True(t, cg.HasEdge(from, to), "optimize=%v: chain edge %d->%d", optimize, from, to)

				link := task.Link{From: from, To: to}
				boxed := false
				for _, n := range tg.Nodes() {
					boxed = boxed || (n.Kind == task.KindBoxing && n.Link == link)
				}
				for _, p := range groups[from] {
					for _, c := range groups[to] {
						if !boxed && p.ParallelID != c.ParallelID {
							continue
						}
						assert.True(t, carries(tg, p, c, link),
							"optimize=%v: %s does not reach %s over %v", optimize, p, c, link)
					}
				}
			}
		}
	}
}

func TestBuild_DataToModelKeepsBoxing(t *testing.T) {
	net := &config.Network{Ops: []*config.Op{
		{Name: "a"},
		{Name: "b", Inputs: []string{"a"}, Trainable: true},
	}}
	devices := []string{"node0.gpu[0]", "node0.gpu[1]"}
	strat := &config.Strategy{Placements: []*config.Placement{
		{Name: "pa", Ops: []string{"a"}, Devices: devices, Policy: config.DataParallel},
		{Name: "pb", Ops: []string{"b"}, Devices: devices, Policy: config.ModelParallel},
	}}

	dp, err := Build(context.Background(), net, strat, newIDs(t), true)
	require.NoError(t, err)
	assert.Equal(t, []PassResult{{Name: "prune-redundant-boxing", Changed: 0}}, dp.Passes())

	tg := dp.TaskGraph()
	assert.Equal(t, 1, tg.CountByKind()[task.KindBoxing])

	groups := tg.ComputeNodesByChain()
	link := task.Link{From: 0, To: 1}
	for _, p := range groups[0] {
		for _, c := range groups[1] {
			assert.True(t, carries(tg, p, c, link), "%s must reach %s", p, c)
			assert.False(t, tg.HasEdge(p, c))
		}
	}
}

// carries reports whether c is fed by p, either directly or through
// auxiliary tasks serving link.
func carries(tg *task.Graph, p, c *task.Node, link task.Link) bool {
	queue := []*task.Node{p}
	seen := map[idmanager.TaskID]bool{p.ID: true}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, next := range tg.Successors(n) {
			if next.ID == c.ID {
				return true
			}
			if next.IsCompute() || next.Link != link || seen[next.ID] {
				continue
			}
			seen[next.ID] = true
			queue = append(queue, next)
		}
	}
	return false
}

func TestBuild_PartitionHolds(t *testing.T) {
	for _, optimize := range []bool{false, true} {
		net, strat := pipeline()
		dp, err := Build(context.Background(), net, strat, newIDs(t), optimize)
		require.NoError(t, err)

		seen := map[idmanager.TaskID]int{}
		for _, nodes := range dp.TaskGraph().ComputeNodesByChain() {
			for _, n := range nodes {
				seen[n.ID]++
			}
		}
		computes := dp.TaskGraph().ComputeNodes()
		assert.Len(t, seen, len(computes))
		for _, n := range computes {
			assert.Equal(t, 1, seen[n.ID])
		}
		assert.NoError(t, VerifyPartition(dp.ChainGraph(), dp.TaskGraph()))
	}
}

func TestBuild_IsDeterministic(t *testing.T) {
	names := func() []string {
		net, strat := pipeline()
		dp, err := Build(context.Background(), net, strat, newIDs(t), true)
		require.NoError(t, err)
		var out []string
		for _, n := range dp.TaskGraph().Nodes() {
			out = append(out, n.ID.String()+" "+n.String())
		}
		return out
	}
	assert.Equal(t, names(), names())
}

func TestBuild_PropagatesChainErrors(t *testing.T) {
	net := &config.Network{Ops: []*config.Op{{Name: "a"}}}
	_, err := Build(context.Background(), net, &config.Strategy{}, newIDs(t), true)
	assert.ErrorIs(t, err, planerr.ErrConfiguration)
}

func TestVerifyPartition_DetectsMissingReplica(t *testing.T) {
	net, strat := pipeline()
	dp, err := Build(context.Background(), net, strat, newIDs(t), false)
	require.NoError(t, err)

	tg := dp.TaskGraph()
	tg.RemoveNode(tg.ComputeNodes()[0])
	err = VerifyPartition(dp.ChainGraph(), tg)
	require.ErrorIs(t, err, planerr.ErrStructural)
	assert.ErrorContains(t, err, "compute tasks, want 2")
}
