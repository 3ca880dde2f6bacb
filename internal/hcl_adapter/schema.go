package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Jobs       []*jobBlock       `hcl:"job,block"`
	Machines   []*machineBlock   `hcl:"machine,block"`
	Ops        []*opBlock        `hcl:"op,block"`
	Placements []*placementBlock `hcl:"placement,block"`
}

type jobBlock struct {
	Name   string   `hcl:"name,label"`
	Remain hcl.Body `hcl:",remain"`
}

type machineBlock struct {
	Name       string         `hcl:"name,label"`
	Addr       string         `hcl:"addr,optional"`
	DeviceType string         `hcl:"device_type"`
	Devices    hcl.Expression `hcl:"devices"`
}

type opBlock struct {
	Name      string         `hcl:"name,label"`
	Type      string         `hcl:"type,optional"`
	Inputs    hcl.Expression `hcl:"inputs,optional"`
	Trainable bool           `hcl:"trainable,optional"`
}

type placementBlock struct {
	Name    string         `hcl:"name,label"`
	Ops     hcl.Expression `hcl:"ops"`
	Devices hcl.Expression `hcl:"devices,optional"`
	Policy  string         `hcl:"policy,optional"`
	Reduce  string         `hcl:"reduce,optional"`
}
