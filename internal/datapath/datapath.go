package datapath

import (
	"context"

	"github.com/specialistvlad/pathforge/internal/chain"
	"github.com/specialistvlad/pathforge/internal/config"
	"github.com/specialistvlad/pathforge/internal/ctxlog"
	"github.com/specialistvlad/pathforge/internal/idmanager"
	"github.com/specialistvlad/pathforge/internal/task"
)

// Graphs is the mutable pair handed to optimization passes.
type Graphs struct {
	Chains *chain.Graph
	Tasks  *task.Graph
}

// PassResult records what one pass changed.
type PassResult struct {
	Name    string
	Changed int
}

// DataPath is the built, read-only pair of chain graph and task graph.
type DataPath struct {
	chains *chain.Graph
	tasks  *task.Graph
	passes []PassResult
}

// ChainGraph returns the chain graph.
func (d *DataPath) ChainGraph() *chain.Graph { return d.chains }

// TaskGraph returns the task graph.
func (d *DataPath) TaskGraph() *task.Graph { return d.tasks }

// Passes returns the optimization passes that ran, in order.
func (d *DataPath) Passes() []PassResult { return append([]PassResult(nil), d.passes...) }

// Build constructs the data path. ids must already be initialized.
func Build(ctx context.Context, net *config.Network, strat *config.Strategy, ids *idmanager.Manager, enableOptimization bool) (*DataPath, error) {
	logger := ctxlog.FromContext(ctx).With("component", "datapath.Build")

	chains, err := chain.Build(ctx, net, strat, ids)
	if err != nil {
		return nil, err
	}

	g := &Graphs{Chains: chains}
	dp := &DataPath{chains: chains}

	g.Tasks, err = expand(chains, ids)
	if err != nil {
		return nil, err
	}
	logger.Debug("Task graph expanded.", "task_count", g.Tasks.Len(), "edge_count", g.Tasks.EdgeCount())

	if enableOptimization {
		if err := runPasses(ctx, DefaultPasses(), g, dp); err != nil {
			return nil, err
		}
	}

	if err := VerifyPartition(chains, g.Tasks); err != nil {
		return nil, err
	}

	dp.tasks = g.Tasks
	logger.Debug("Data path built.",
		"chain_count", chains.Len(),
		"task_count", g.Tasks.Len(),
		"compute_task_count", len(g.Tasks.ComputeNodes()),
		"optimized", enableOptimization,
	)
	return dp, nil
}

func runPasses(ctx context.Context, passes []Pass, g *Graphs, dp *DataPath) error {
	logger := ctxlog.FromContext(ctx)
	for _, p := range passes {
		changed, err := p.Run(ctx, g)
		if err != nil {
			return err
		}
		logger.Debug("Optimization pass finished.", "pass", p.Name(), "changed", changed)
		dp.passes = append(dp.passes, PassResult{Name: p.Name(), Changed: changed})
	}
	return nil
}
