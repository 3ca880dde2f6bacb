// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the planning lifecycle: load a job, build
// the data and model paths, export the plan, and optionally keep serving
// health and metrics endpoints. It is decoupled from any specific
// entrypoint like a CLI.
package app
