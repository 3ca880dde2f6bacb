package pathmgr

import (
	"github.com/specialistvlad/pathforge/internal/chain"
	"github.com/specialistvlad/pathforge/internal/datapath"
	"github.com/specialistvlad/pathforge/internal/idmanager"
	"github.com/specialistvlad/pathforge/internal/modelpath"
	"github.com/specialistvlad/pathforge/internal/task"
)

// Initialized reports whether Init completed successfully.
func (m *Manager) Initialized() bool { return m.initialized }

// Identifiers returns the identifier service populated by Init.
func (m *Manager) Identifiers() *idmanager.Manager { return m.ids }

// DataPath returns the data path, or nil before Init.
func (m *Manager) DataPath() *datapath.DataPath { return m.dataPath }

// ChainGraph returns the chain graph, or nil before Init.
func (m *Manager) ChainGraph() *chain.Graph {
	if m.dataPath == nil {
		return nil
	}
	return m.dataPath.ChainGraph()
}

// TaskGraph returns the task graph, or nil before Init.
func (m *Manager) TaskGraph() *task.Graph {
	if m.dataPath == nil {
		return nil
	}
	return m.dataPath.TaskGraph()
}

// UpdatePath returns the update path built for chain id.
func (m *Manager) UpdatePath(id chain.ID) (*modelpath.Graph, bool) { return lookup(m.update, id) }

// LoadPath returns the load path built for chain id.
func (m *Manager) LoadPath(id chain.ID) (*modelpath.Graph, bool) { return lookup(m.load, id) }

// SavePath returns the save path built for chain id.
func (m *Manager) SavePath(id chain.ID) (*modelpath.Graph, bool) { return lookup(m.save, id) }

// SortedComputeTasks returns the compute tasks of chain id ordered by
// parallel rank. The slice is a copy.
func (m *Manager) SortedComputeTasks(id chain.ID) []*task.Node {
	if id < 0 || int(id) >= len(m.sorted) {
		return nil
	}
	return append([]*task.Node(nil), m.sorted[id]...)
}

func lookup(paths []*modelpath.Graph, id chain.ID) (*modelpath.Graph, bool) {
	if id < 0 || int(id) >= len(paths) {
		return nil, false
	}
	return paths[id], true
}
