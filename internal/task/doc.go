// Package task holds the task graph: physically placed units of work and the
// auxiliary nodes that move data between them.
//
// Every node carries a Kind. Code that only cares about compute tasks filters
// on the kind instead of inspecting concrete types.
package task
