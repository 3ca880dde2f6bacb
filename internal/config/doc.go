// Package config defines the format-agnostic job model consumed by the
// planner, along with the Loader interface for reading it from a concrete
// source.
//
// The `config.Job` is the single, immutable snapshot from which identifiers,
// chains, tasks and model paths are derived. Concrete loaders, such as the
// HCL one, live in separate packages.
package config
