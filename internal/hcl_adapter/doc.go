// Package hcl_adapter reads job descriptions written in HCL and translates
// them into the format-agnostic config.Job.
//
// A job is spread over any number of .hcl files containing `job`, `machine`,
// `op` and `placement` blocks. Op dependencies are discovered from `op.<name>`
// references, the way they are written in Terraform-style configurations, and
// placement device lists are evaluated with go-cty against the declared
// machines.
package hcl_adapter
