package pathmgr

import (
	"context"
	"errors"
	"time"

	"github.com/specialistvlad/pathforge/internal/chain"
	"github.com/specialistvlad/pathforge/internal/config"
	"github.com/specialistvlad/pathforge/internal/ctxlog"
	"github.com/specialistvlad/pathforge/internal/datapath"
	"github.com/specialistvlad/pathforge/internal/idmanager"
	"github.com/specialistvlad/pathforge/internal/metrics"
	"github.com/specialistvlad/pathforge/internal/modelpath"
	"github.com/specialistvlad/pathforge/internal/planerr"
	"github.com/specialistvlad/pathforge/internal/task"
	"github.com/specialistvlad/pathforge/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// Initialization steps, in execution order.
const (
	StepIdentifiers = "identifiers"
	StepDataPath    = "data-path"
	StepSort        = "sort"
	StepUpdatePath  = "update-path"
	StepLoadPath    = "load-path"
	StepSavePath    = "save-path"
)

// ErrAlreadyInitialized is returned by a second call to Init.
var ErrAlreadyInitialized = errors.New("path manager already initialized")

// Option configures a Manager.
type Option func(*Manager)

// WithMetrics records step timings and plan sizes on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(m *Manager) { m.metrics = r }
}

// WithOptimization toggles the data path optimization passes. They are on by
// default.
func WithOptimization(enabled bool) Option {
	return func(m *Manager) { m.optimize = enabled }
}

// Manager owns the data path and the per-chain model paths. The per-chain
// collections are indexed by chain.ID.
type Manager struct {
	optimize bool
	metrics  *metrics.Recorder

	initialized bool
	ids         *idmanager.Manager
	dataPath    *datapath.DataPath
	sorted      [][]*task.Node
	update      []*modelpath.Graph
	load        []*modelpath.Graph
	save        []*modelpath.Graph
}

// New returns an uninitialized Manager.
func New(opts ...Option) *Manager {
	m := &Manager{optimize: true}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// state is everything Init builds. It is committed to the Manager only when
// every step succeeded.
type state struct {
	ids      *idmanager.Manager
	dataPath *datapath.DataPath
	sorted   [][]*task.Node
	update   []*modelpath.Graph
	load     []*modelpath.Graph
	save     []*modelpath.Graph
}

// Init builds every structure for job. Any failure aborts the whole
// initialization and is returned with the failing step and, where known, the
// failing chain.
func (m *Manager) Init(ctx context.Context, job *config.Job) (err error) {
	if m.initialized {
		return ErrAlreadyInitialized
	}
	if job == nil {
		return planerr.Configurationf("no job to plan")
	}

	logger := ctxlog.FromContext(ctx).With("component", "pathmgr", "job", job.Name)
	ctx = ctxlog.WithLogger(ctx, logger)
	ctx, span := tracing.StartSpan(ctx, "pathmgr.Init", attribute.String("job", job.Name))
	defer func() { span.End(err) }()

	st := &state{}
	steps := []struct {
		name string
		run  func(context.Context, *config.Job, *state) error
	}{
		{StepIdentifiers, m.initIdentifiers},
		{StepDataPath, m.buildDataPath},
		{StepSort, sortComputeTasks},
		{StepUpdatePath, buildUpdatePaths},
		{StepLoadPath, buildLoadPaths},
		{StepSavePath, buildSavePaths},
	}
	for _, s := range steps {
		if err := m.runStep(ctx, s.name, func(ctx context.Context) error { return s.run(ctx, job, st) }); err != nil {
			logger.Error("Path manager initialization failed.", "step", s.name, "error", err)
			return err
		}
	}

	m.ids = st.ids
	m.dataPath = st.dataPath
	m.sorted = st.sorted
	m.update, m.load, m.save = st.update, st.load, st.save
	m.initialized = true

	m.publishPlanMetrics()
	m.metrics.RecordSuccess()

	chains := m.dataPath.ChainGraph()
	span.SetAttributes(
		attribute.Int("chain_count", chains.Len()),
		attribute.Int("task_count", m.dataPath.TaskGraph().Len()),
	)
	logger.Info("Path manager initialized.",
		"chain_count", chains.Len(),
		"task_count", m.dataPath.TaskGraph().Len(),
		"optimized", m.optimize,
	)
	return nil
}

func (m *Manager) runStep(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := tracing.StartSpan(ctx, "pathmgr."+name)
	start := time.Now()

	err := planerr.WithStep(fn(ctx), name)

	m.metrics.ObserveStep(name, time.Since(start))
	if err != nil {
		m.metrics.RecordFailure(name, err)
	}
	span.End(err)
	ctxlog.FromContext(ctx).Debug("Step finished.", "step", name, "duration", time.Since(start), "ok", err == nil)
	return err
}

func (m *Manager) initIdentifiers(_ context.Context, job *config.Job, st *state) error {
	ids := idmanager.New()
	if err := ids.Init(job.Resource); err != nil {
		return err
	}
	st.ids = ids
	return nil
}

func (m *Manager) buildDataPath(ctx context.Context, job *config.Job, st *state) error {
	dp, err := datapath.Build(ctx, job.Network, job.Strategy, st.ids, m.optimize)
	if err != nil {
		return err
	}
	st.dataPath = dp
	return nil
}

// sortComputeTasks groups compute tasks by chain in one pass over the task
// graph and orders every group by parallel rank.
func sortComputeTasks(_ context.Context, _ *config.Job, st *state) error {
	chains := st.dataPath.ChainGraph()
	groups := st.dataPath.TaskGraph().ComputeNodesByChain()

	for id := range groups {
		if _, ok := chains.Node(id); !ok {
			return planerr.Structuralf("compute tasks reference unknown chain %d", id)
		}
	}

	st.sorted = make([][]*task.Node, chains.Len())
	for _, c := range chains.Nodes() {
		nodes := groups[c.ID]
		if err := task.SortByParallelID(nodes); err != nil {
			return planerr.WithChain(err, c.Name)
		}
		st.sorted[c.ID] = nodes
	}
	return nil
}

func buildUpdatePaths(_ context.Context, _ *config.Job, st *state) error {
	chains := st.dataPath.ChainGraph()
	st.update = make([]*modelpath.Graph, chains.Len())
	for _, c := range chains.Nodes() {
		g, err := modelpath.BuildUpdate(c, st.sorted[c.ID])
		if err != nil {
			return planerr.WithChain(err, c.Name)
		}
		st.update[c.ID] = g
	}
	return nil
}

func buildLoadPaths(_ context.Context, _ *config.Job, st *state) error {
	var err error
	st.load, err = perChain(st.dataPath.ChainGraph(), modelpath.BuildLoad)
	return err
}

func buildSavePaths(_ context.Context, _ *config.Job, st *state) error {
	var err error
	st.save, err = perChain(st.dataPath.ChainGraph(), modelpath.BuildSave)
	return err
}

func perChain(chains *chain.Graph, build func(*chain.Node) (*modelpath.Graph, error)) ([]*modelpath.Graph, error) {
	out := make([]*modelpath.Graph, chains.Len())
	for _, c := range chains.Nodes() {
		g, err := build(c)
		if err != nil {
			return nil, planerr.WithChain(err, c.Name)
		}
		out[c.ID] = g
	}
	return out, nil
}

func (m *Manager) publishPlanMetrics() {
	if m.metrics == nil {
		return
	}
	tasks := map[string]int{}
	for kind, n := range m.dataPath.TaskGraph().CountByKind() {
		tasks[kind.String()] = n
	}
	m.metrics.SetPlan(m.dataPath.ChainGraph().Len(), tasks, map[string]int{
		string(modelpath.PathUpdate): totalNodes(m.update),
		string(modelpath.PathLoad):   totalNodes(m.load),
		string(modelpath.PathSave):   totalNodes(m.save),
	})
}

func totalNodes(paths []*modelpath.Graph) int {
	n := 0
	for _, g := range paths {
		n += g.Len()
	}
	return n
}
