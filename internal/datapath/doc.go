// Package datapath builds the data path of a job: the chain graph and the
// task graph expanded from it.
//
// Build partitions the logical network into chains, expands every chain into
// one compute task per replica and connects producer and consumer replicas
// through boxing and comm-net copy tasks. When optimization is enabled the
// passes returned by DefaultPasses simplify the task graph; the chain/task
// partition is verified afterwards. Chain edges are left untouched.
package datapath
