/*
Package nodeid provides a structured, type-safe representation for the
identifiers used in placement directives.

The generic format is a dot-separated sequence of segments, e.g.
`node0.gpu[3]`. Device references are the two-segment specialisation
`<machine>.<device_type>[<index>]`; omitting the index refers to every
device of that type on the machine.

This package enforces the identifier schema and centralizes all
formatting and parsing logic.
*/
package nodeid
