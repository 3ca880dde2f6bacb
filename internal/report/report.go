// Package report renders a built plan as a serializable summary.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/pathforge/internal/chain"
	"github.com/specialistvlad/pathforge/internal/modelpath"
	"github.com/specialistvlad/pathforge/internal/pathmgr"
	"github.com/specialistvlad/pathforge/internal/task"
	"gopkg.in/yaml.v3"
)

// Summary describes one successful planning run.
type Summary struct {
	PlanID      string    `yaml:"plan_id" json:"plan_id"`
	Job         string    `yaml:"job" json:"job"`
	GeneratedAt time.Time `yaml:"generated_at" json:"generated_at"`
	Machines    int       `yaml:"machines" json:"machines"`
	Passes      []Pass    `yaml:"passes,omitempty" json:"passes,omitempty"`
	Tasks       Tasks     `yaml:"tasks" json:"tasks"`
	Chains      []Chain   `yaml:"chains" json:"chains"`
}

// Pass is one optimization pass and how much it changed.
type Pass struct {
	Name    string `yaml:"name" json:"name"`
	Changed int    `yaml:"changed" json:"changed"`
}

// Tasks counts task graph nodes by kind.
type Tasks struct {
	Compute     int `yaml:"compute" json:"compute"`
	Boxing      int `yaml:"boxing" json:"boxing"`
	CopyCommNet int `yaml:"copy_comm_net" json:"copy_comm_net"`
	Edges       int `yaml:"edges" json:"edges"`
}

// Chain summarizes one chain and its model paths.
type Chain struct {
	ID           int           `yaml:"id" json:"id"`
	Name         string        `yaml:"name" json:"name"`
	Placement    string        `yaml:"placement" json:"placement"`
	Ops          []string      `yaml:"ops" json:"ops"`
	Trainable    bool          `yaml:"trainable" json:"trainable"`
	Policy       string        `yaml:"policy" json:"policy"`
	Reduce       string        `yaml:"reduce" json:"reduce"`
	Producers    []int         `yaml:"producers,omitempty" json:"producers,omitempty"`
	Consumers    []int         `yaml:"consumers,omitempty" json:"consumers,omitempty"`
	ComputeTasks []ComputeTask `yaml:"compute_tasks" json:"compute_tasks"`
	Update       Path          `yaml:"update" json:"update"`
	Load         Path          `yaml:"load" json:"load"`
	Save         Path          `yaml:"save" json:"save"`
}

// ComputeTask is one replica of a chain.
type ComputeTask struct {
	ID     string `yaml:"id" json:"id"`
	Rank   int    `yaml:"rank" json:"rank"`
	Device string `yaml:"device" json:"device"`
}

// Path summarizes a model path graph.
type Path struct {
	Nodes       int            `yaml:"nodes" json:"nodes"`
	Edges       int            `yaml:"edges" json:"edges"`
	Attachments int            `yaml:"attachments" json:"attachments"`
	Kinds       map[string]int `yaml:"kinds,omitempty" json:"kinds,omitempty"`
}

// Option customizes Build.
type Option func(*builder)

type builder struct {
	newID func() uuid.UUID
	now   func() time.Time
}

// WithIDSource overrides the plan id generator.
func WithIDSource(fn func() uuid.UUID) Option { return func(b *builder) { b.newID = fn } }

// WithClock overrides the timestamp source.
func WithClock(fn func() time.Time) Option { return func(b *builder) { b.now = fn } }

// Build summarizes an initialized Manager.
func Build(m *pathmgr.Manager, job string, opts ...Option) (*Summary, error) {
	if m == nil || !m.Initialized() {
		return nil, fmt.Errorf("path manager is not initialized")
	}
	b := &builder{newID: uuid.New, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}

	s := &Summary{
		PlanID:      b.newID().String(),
		Job:         job,
		GeneratedAt: b.now().UTC(),
		Machines:    m.Identifiers().MachineCount(),
	}
	for _, p := range m.DataPath().Passes() {
		s.Passes = append(s.Passes, Pass{Name: p.Name, Changed: p.Changed})
	}

	tg := m.TaskGraph()
	counts := tg.CountByKind()
	s.Tasks = Tasks{
		Compute:     counts[task.KindCompute],
		Boxing:      counts[task.KindBoxing],
		CopyCommNet: counts[task.KindCopyCommNet],
		Edges:       tg.EdgeCount(),
	}

	cg := m.ChainGraph()
	for _, c := range cg.Nodes() {
		s.Chains = append(s.Chains, summarizeChain(m, cg, c))
	}
	return s, nil
}

func summarizeChain(m *pathmgr.Manager, cg *chain.Graph, c *chain.Node) Chain {
	out := Chain{
		ID:        int(c.ID),
		Name:      c.Name,
		Placement: c.Placement,
		Ops:       append([]string(nil), c.Ops...),
		Trainable: c.Trainable,
		Policy:    string(c.Policy),
		Reduce:    string(c.Reduce),
		Producers: ints(cg.Producers(c.ID)),
		Consumers: ints(cg.Consumers(c.ID)),
	}
	for _, n := range m.SortedComputeTasks(c.ID) {
		out.ComputeTasks = append(out.ComputeTasks, ComputeTask{ID: n.ID.String(), Rank: n.ParallelID, Device: n.Device.String()})
	}
	if g, ok := m.UpdatePath(c.ID); ok {
		out.Update = summarizePath(g)
	}
	if g, ok := m.LoadPath(c.ID); ok {
		out.Load = summarizePath(g)
	}
	if g, ok := m.SavePath(c.ID); ok {
		out.Save = summarizePath(g)
	}
	return out
}

func summarizePath(g *modelpath.Graph) Path {
	p := Path{Nodes: g.Len(), Edges: len(g.Edges()), Attachments: len(g.Attachments())}
	if g.Empty() {
		return p
	}
	p.Kinds = make(map[string]int)
	for k, n := range g.CountByKind() {
		p.Kinds[k.String()] = n
	}
	return p
}

func ints(ids []chain.ID) []int {
	if len(ids) == 0 {
		return nil
	}
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}

// YAML renders the summary as YAML.
func (s *Summary) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}

// WriteFile writes the YAML rendering to path.
func (s *Summary) WriteFile(path string) error {
	data, err := s.YAML()
	if err != nil {
		return fmt.Errorf("failed to render plan: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write plan to %s: %w", path, err)
	}
	return nil
}

// ToMap returns the summary as a JSON-compatible map, the shape socket.io
// payloads are encoded from.
func (s *Summary) ToMap() (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
