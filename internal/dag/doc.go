// Package dag provides a small, deterministic directed acyclic graph keyed by
// string ids.
//
// Nodes and edges are reported in insertion order so that every algorithm in
// this package (cycle detection, topological ordering, node removal)
// produces the same result for the same construction sequence. The chain and
// task graphs both sit on top of it.
package dag
