// Package idmanager assigns stable identifiers to machines, devices and
// tasks from a job's resource specification.
//
// The Manager must be initialized exactly once, before any placement
// directive is resolved. Machine ids follow declaration order, device ids are
// derived from the machine id and the local device index, and task ids are
// handed out from a per-device sequence so that the same build order always
// yields the same ids.
package idmanager
