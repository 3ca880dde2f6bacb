// Package modelpath builds the per-chain graphs that manage trainable
// parameters: the update path that aggregates gradients across replicas and
// redistributes new values, and the load and save paths that move values
// between a checkpoint and the replicas.
//
// Builders are pure functions of their inputs. Building twice from the same
// chain and task list yields graphs with equal Signature values.
package modelpath
