// Package chain partitions a logical network into chains.
//
// A chain is the set of ops that share a placement and are connected by data
// edges inside it; all of them are scheduled together as one pipeline stage.
// The Graph owns every Node and hands out dense IDs that other packages use
// as stable, non-owning references.
package chain
