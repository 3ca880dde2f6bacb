package config

import "fmt"

// Job is the unified representation of one training job: where it can run,
// what it computes, and how the computation is spread over devices.
type Job struct {
	Name     string
	Resource *Resource
	Network  *Network
	Strategy *Strategy
}

// Resource describes the machines available to the job.
type Resource struct {
	Machines []*Machine
}

// Machine is one host together with its homogeneous set of devices.
type Machine struct {
	Name        string
	Addr        string
	DeviceType  string
	DeviceCount int
}

// Network is the logical network: operators and their data dependencies.
type Network struct {
	Ops []*Op
}

// Op is a single logical operator.
type Op struct {
	Name string
	Type string
	// Inputs lists the names of the ops whose outputs this op consumes.
	Inputs []string
	// Trainable marks ops that own model parameters.
	Trainable bool
}

// Strategy groups operators into placements.
type Strategy struct {
	Placements []*Placement
}

// Placement binds a set of ops to an ordered device list. The position of a
// device in Devices is the parallel rank of the replica placed on it.
type Placement struct {
	Name    string
	Ops     []string
	Devices []string
	Policy  ParallelPolicy
	Reduce  ReduceTopology
}

// ParallelPolicy selects how replicas of a chain share parameters.
type ParallelPolicy string

const (
	// DataParallel replicas hold identical parameters and aggregate gradients.
	DataParallel ParallelPolicy = "data"
	// ModelParallel replicas each own a disjoint shard of the parameters.
	ModelParallel ParallelPolicy = "model"
)

// ReduceTopology selects the gradient aggregation topology for data-parallel chains.
type ReduceTopology string

const (
	ReduceRing ReduceTopology = "ring"
	ReduceTree ReduceTopology = "tree"
)

// ParsePolicy validates a policy string. The empty string means DataParallel.
func ParsePolicy(s string) (ParallelPolicy, error) {
	switch ParallelPolicy(s) {
	case "", DataParallel:
		return DataParallel, nil
	case ModelParallel:
		return ModelParallel, nil
	default:
		return "", fmt.Errorf("unknown parallel policy %q (want %q or %q)", s, DataParallel, ModelParallel)
	}
}

// ParseReduce validates a reduce topology string. The empty string means ReduceRing.
func ParseReduce(s string) (ReduceTopology, error) {
	switch ReduceTopology(s) {
	case "", ReduceRing:
		return ReduceRing, nil
	case ReduceTree:
		return ReduceTree, nil
	default:
		return "", fmt.Errorf("unknown reduce topology %q (want %q or %q)", s, ReduceRing, ReduceTree)
	}
}

// OpIndex returns a name -> position lookup over the network's ops.
func (n *Network) OpIndex() map[string]int {
	idx := make(map[string]int, len(n.Ops))
	for i, op := range n.Ops {
		idx[op.Name] = i
	}
	return idx
}
