package modelpath

import (
	"github.com/specialistvlad/pathforge/internal/chain"
	"github.com/specialistvlad/pathforge/internal/config"
	"github.com/specialistvlad/pathforge/internal/planerr"
)

// BuildLoad builds the path that sources initial parameter values for c.
// Data-parallel replicas share one loader on rank 0; model-parallel replicas
// each load their own shard.
func BuildLoad(c *chain.Node) (*Graph, error) {
	g := newGraph(PathLoad, c.ID)
	if !c.Trainable {
		return g, nil
	}
	if c.ParallelNum() == 0 {
		return nil, planerr.WithChain(planerr.NotFoundf("no compute task to load parameters into"), c.Name)
	}

	if c.Policy == config.ModelParallel {
		for r, d := range c.Devices {
			ld := g.add(KindLoad, r, 0, d)
			g.attach(ld, r, ToCompute)
		}
		return g, nil
	}

	ld := g.add(KindLoad, 0, 0, c.Devices[0])
	for r := range c.Devices {
		g.attach(ld, r, ToCompute)
	}
	return g, nil
}

// BuildSave builds the path that persists the parameters of c. Data-parallel
// replicas hold identical values, so only rank 0 is saved; model-parallel
// shards are saved individually and finished by a single commit.
func BuildSave(c *chain.Node) (*Graph, error) {
	g := newGraph(PathSave, c.ID)
	if !c.Trainable {
		return g, nil
	}
	if c.ParallelNum() == 0 {
		return nil, planerr.WithChain(planerr.NotFoundf("no compute task to save parameters from"), c.Name)
	}

	if c.Policy == config.ModelParallel {
		saves := make([]int, len(c.Devices))
		for r, d := range c.Devices {
			saves[r] = g.add(KindSave, r, 0, d)
			g.attach(saves[r], r, FromCompute)
		}
		commit := g.add(KindCommit, 0, 0, c.Devices[0])
		for _, s := range saves {
			g.link(s, commit)
		}
		return g, nil
	}

	sv := g.add(KindSave, 0, 0, c.Devices[0])
	g.attach(sv, 0, FromCompute)
	return g, nil
}
