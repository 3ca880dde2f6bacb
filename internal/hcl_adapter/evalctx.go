package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/pathforge/internal/config"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// newEvalContext exposes the declared machines to placement expressions as
// `machine.<name>.{name,device_type,devices}` together with a few list and
// string helpers.
func newEvalContext(res *config.Resource) *hcl.EvalContext {
	machines := make(map[string]cty.Value, len(res.Machines))
	for _, m := range res.Machines {
		machines[m.Name] = cty.ObjectVal(map[string]cty.Value{
			"name":        cty.StringVal(m.Name),
			"device_type": cty.StringVal(m.DeviceType),
			"devices":     cty.NumberIntVal(int64(m.DeviceCount)),
		})
	}

	machineVal := cty.EmptyObjectVal
	if len(machines) > 0 {
		machineVal = cty.ObjectVal(machines)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"machine": machineVal,
		},
		Functions: map[string]function.Function{
			"range":      stdlib.RangeFunc,
			"concat":     stdlib.ConcatFunc,
			"format":     stdlib.FormatFunc,
			"formatlist": stdlib.FormatListFunc,
			"length":     stdlib.LengthFunc,
		},
	}
}
