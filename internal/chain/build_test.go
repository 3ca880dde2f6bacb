package chain

import (
	"context"
	"testing"

	"github.com/specialistvlad/pathforge/internal/config"
	"github.com/specialistvlad/pathforge/internal/idmanager"
	"github.com/specialistvlad/pathforge/internal/planerr"
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

func op(name string, trainable bool, inputs ...string) *config.Op {
	return &config.Op{Name: name, Type: "generic", Inputs: inputs, Trainable: trainable}
}

func TestBuild_SplitsPlacementIntoConnectedChains(t *testing.T) {
	net := &config.Network{Ops: []*config.Op{
		op("data", false),
		op("fc1", true, "data"),
		op("aux", true),
		op("fc2", true, "fc1"),
		op("loss", false, "fc2", "aux"),
	}}
	strat := &config.Strategy{Placements: []*config.Placement{
		{Name: "input", Ops: []string{"data"}, Devices: []string{"node0.gpu[0]"}},
		{Name: "body", Ops: []string{"fc1", "fc2", "aux"}, Devices: []string{"node0.gpu"}},
		{Name: "head", Ops: []string{"loss"}, Devices: []string{"node1.gpu[0]", "node1.gpu[1]"}},
	}}

	g, err := Build(context.Background(), net, strat, newIDs(t))
	require.NoError(t, err)
	require.Equal(t, 4, g.Len())

	names := []string{}
	for _, n := range g.Nodes() {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"input", "body#0", "body#1", "head"}, names)

	body0, _ := g.Node(1)
	assert.Equal(t, []string{"fc1", "fc2"}, body0.Ops)
	assert.True(t, body0.Trainable)
	assert.Equal(t, 4, body0.ParallelNum())
	assert.Equal(t, config.DataParallel, body0.Policy)
	assert.Equal(t, config.ReduceRing, body0.Reduce)

	input, _ := g.Node(0)
	assert.False(t, input.Trainable)

	id, ok := g.ChainOf("aux")
	require.True(t, ok)
	assert.Equal(t, ID(2), id)

	assert.Equal(t, [][2]ID{{0, 1}, {1, 3}, {2, 3}}, g.Edges())
	assert.Equal(t, []ID{1, 2}, g.Producers(3))
	assert.Equal(t, []ID{1}, g.Consumers(0))

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []ID{0, 1, 2, 3}, order)
}

func TestBuild_EveryOpInExactlyOneChain(t *testing.T) {
	net := &config.Network{Ops: []*config.Op{
		op("a", false), op("b", true, "a"), op("c", true, "b"), op("d", false, "c"),
	}}
	strat := &config.Strategy{Placements: []*config.Placement{
		{Name: "p0", Ops: []string{"a", "c"}, Devices: []string{"node0.gpu[0]"}},
		{Name: "p1", Ops: []string{"b", "d"}, Devices: []string{"node0.gpu[1]"}},
	}}
	g, err := Build(context.Background(), net, strat, newIDs(t))
	require.NoError(t, err)

	seen := map[string]int{}
	for _, n := range g.Nodes() {
		for _, o := range n.Ops {
			seen[o]++
		}
	}
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1, "d": 1}, seen)
}

func TestBuild_Errors(t *testing.T) {
	validNet := func() *config.Network {
		return &config.Network{Ops: []*config.Op{op("a", false), op("b", true, "a")}}
	}
	both := func(devs ...string) *config.Strategy {
		return &config.Strategy{Placements: []*config.Placement{
			{Name: "p", Ops: []string{"a", "b"}, Devices: devs},
		}}
	}

	testCases := []struct {
		name  string
		net   *config.Network
		strat *config.Strategy
		kind  error
		msg   string
	}{
		{"empty network", &config.Network{}, both("node0.gpu[0]"), planerr.ErrStructural, "no ops"},
		{"cyclic network", &config.Network{Ops: []*config.Op{op("a", false, "b"), op("b", false, "a")}},
			both("node0.gpu[0]"), planerr.ErrStructural, "cyclic"},
		{"unknown input", &config.Network{Ops: []*config.Op{op("a", false, "ghost")}},
			both("node0.gpu[0]"), planerr.ErrStructural, "unknown op"},
		{"duplicate op", &config.Network{Ops: []*config.Op{op("a", false), op("a", false)}},
			both("node0.gpu[0]"), planerr.ErrStructural, "duplicate op"},
		{"no placements", validNet(), &config.Strategy{}, planerr.ErrConfiguration, "no placements"},
		{"op not placed", validNet(), &config.Strategy{Placements: []*config.Placement{
			{Name: "p", Ops: []string{"a"}, Devices: []string{"node0.gpu[0]"}},
		}}, planerr.ErrConfiguration, "not covered"},
		{"op placed twice", validNet(), &config.Strategy{Placements: []*config.Placement{
			{Name: "p", Ops: []string{"a", "b"}, Devices: []string{"node0.gpu[0]"}},
			{Name: "q", Ops: []string{"b"}, Devices: []string{"node0.gpu[1]"}},
		}}, planerr.ErrConfiguration, "placed by both"},
		{"unknown op in placement", validNet(), &config.Strategy{Placements: []*config.Placement{
			{Name: "p", Ops: []string{"a", "b", "z"}, Devices: []string{"node0.gpu[0]"}},
		}}, planerr.ErrConfiguration, "unknown op"},
		{"duplicate device", validNet(), both("node0.gpu[0]", "node0.gpu[0]"), planerr.ErrConfiguration, "more than once"},
		{"unknown machine", validNet(), both("node7.gpu[0]"), planerr.ErrIdentifier, "unknown machine"},
		{"bad policy", validNet(), &config.Strategy{Placements: []*config.Placement{
			{Name: "p", Ops: []string{"a", "b"}, Devices: []string{"node0.gpu[0]"}, Policy: "pipeline"},
		}}, planerr.ErrConfiguration, "unknown parallel policy"},
		{"non-trainable chain without devices", &config.Network{Ops: []*config.Op{op("a", false)}},
			&config.Strategy{Placements: []*config.Placement{{Name: "p", Ops: []string{"a"}}}},
			planerr.ErrConfiguration, "assigns no devices"},
		{"chain cycle", &config.Network{Ops: []*config.Op{op("a", false), op("b", false, "a"), op("c", false, "a", "b")}},
			&config.Strategy{Placements: []*config.Placement{
				{Name: "outer", Ops: []string{"a", "c"}, Devices: []string{"node0.gpu[0]"}},
				{Name: "inner", Ops: []string{"b"}, Devices: []string{"node0.gpu[1]"}},
			}}, planerr.ErrStructural, "not resolvable"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(context.Background(), tc.net, tc.strat, newIDs(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)
			assert.ErrorContains(t, err, tc.msg)
		})
	}
}

func TestBuild_TrainableChainWithoutDevicesIsAccepted(t *testing.T) {
	net := &config.Network{Ops: []*config.Op{op("w", true)}}
	strat := &config.Strategy{Placements: []*config.Placement{{Name: "p", Ops: []string{"w"}}}}

	g, err := Build(context.Background(), net, strat, newIDs(t))
	require.NoError(t, err)
	n, ok := g.Node(0)
	require.True(t, ok)
	assert.Zero(t, n.ParallelNum())
}

func TestBuild_KeepsEdgesImpliedByLongerPaths(t *testing.T) {
	net := &config.Network{Ops: []*config.Op{
		op("a", false), op("b", false, "a"), op("c", false, "a", "b"),
	}}
	strat := &config.Strategy{Placements: []*config.Placement{
		{Name: "pa", Ops: []string{"a"}, Devices: []string{"node0.gpu[0]"}},
		{Name: "pb", Ops: []string{"b"}, Devices: []string{"node0.gpu[1]"}},
		{Name: "pc", Ops: []string{"c"}, Devices: []string{"node0.gpu[2]"}},
	}}
	g, err := Build(context.Background(), net, strat, newIDs(t))
	require.NoError(t, err)

	// c reads a directly, so a -> c carries data even though a -> b -> c exists.
	assert.True(t, g.HasEdge(0, 2))
	assert.True(t, g.HasEdge(0, 1))
	assert.True(t, g.HasEdge(1, 2))
	assert.Equal(t, 3, g.EdgeCount())
}
