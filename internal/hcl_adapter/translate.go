// This file contains the logic for translating the decoded HCL blocks into
// the format-agnostic job model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/pathforge/internal/config"
	"github.com/specialistvlad/pathforge/internal/ctxlog"
	"github.com/specialistvlad/pathforge/internal/planerr"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

func (l *Loader) translateMachines(ctx context.Context, blocks []*machineBlock) (*config.Resource, error) {
	logger := ctxlog.FromContext(ctx)
	res := &config.Resource{}
	seen := make(map[string]bool, len(blocks))

	for _, b := range blocks {
		if seen[b.Name] {
			return nil, planerr.Identifierf("duplicate machine %q", b.Name)
		}
		seen[b.Name] = true

		count, err := evalInt(b.Devices, nil)
		if err != nil {
			return nil, planerr.Wrap(planerr.ErrIdentifier, err, "machine %q: devices", b.Name)
		}
		logger.Debug("Translated machine.", "machine", b.Name, "device_type", b.DeviceType, "devices", count)

		res.Machines = append(res.Machines, &config.Machine{
			Name:        b.Name,
			Addr:        b.Addr,
			DeviceType:  b.DeviceType,
			DeviceCount: count,
		})
	}
	return res, nil
}

func (l *Loader) translateOps(ctx context.Context, blocks []*opBlock) (*config.Network, error) {
	logger := ctxlog.FromContext(ctx)
	net := &config.Network{}
	seen := make(map[string]bool, len(blocks))

	for _, b := range blocks {
		if seen[b.Name] {
			return nil, planerr.Configurationf("duplicate op %q", b.Name)
		}
		seen[b.Name] = true

		var inputs []string
		if isExprDefined(b.Inputs) {
			var err error
			inputs, err = opNames(b.Inputs)
			if err != nil {
				return nil, planerr.Wrap(planerr.ErrConfiguration, err, "op %q: inputs", b.Name)
			}
		}
		logger.Debug("Translated op.", "op", b.Name, "type", b.Type, "inputs", inputs, "trainable", b.Trainable)

		net.Ops = append(net.Ops, &config.Op{
			Name:      b.Name,
			Type:      b.Type,
			Inputs:    inputs,
			Trainable: b.Trainable,
		})
	}
	return net, nil
}

func (l *Loader) translatePlacements(ctx context.Context, blocks []*placementBlock, evalCtx *hcl.EvalContext) (*config.Strategy, error) {
	logger := ctxlog.FromContext(ctx)
	strat := &config.Strategy{}
	seen := make(map[string]bool, len(blocks))

	for _, b := range blocks {
		if seen[b.Name] {
			return nil, planerr.Configurationf("duplicate placement %q", b.Name)
		}
		seen[b.Name] = true

		ops, err := opNames(b.Ops)
		if err != nil {
			return nil, planerr.Wrap(planerr.ErrConfiguration, err, "placement %q: ops", b.Name)
		}

		var devices []string
		if isExprDefined(b.Devices) {
			devices, err = evalStrings(b.Devices, evalCtx)
			if err != nil {
				return nil, planerr.Wrap(planerr.ErrConfiguration, err, "placement %q: devices", b.Name)
			}
		}

		policy, err := config.ParsePolicy(b.Policy)
		if err != nil {
			return nil, planerr.Wrap(planerr.ErrConfiguration, err, "placement %q", b.Name)
		}
		reduce, err := config.ParseReduce(b.Reduce)
		if err != nil {
			return nil, planerr.Wrap(planerr.ErrConfiguration, err, "placement %q", b.Name)
		}
		logger.Debug("Translated placement.", "placement", b.Name, "ops", ops, "devices", devices, "policy", policy, "reduce", reduce)

		strat.Placements = append(strat.Placements, &config.Placement{
			Name:    b.Name,
			Ops:     ops,
			Devices: devices,
			Policy:  policy,
			Reduce:  reduce,
		})
	}
	return strat, nil
}

// isExprDefined reports whether an optional attribute was present in the
// source. The decoder fills omitted optional attributes with zero-width
// placeholder expressions, so a nil check is not enough.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	rng := expr.Range()
	return rng.End.Byte > rng.Start.Byte
}

func evalInt(expr hcl.Expression, evalCtx *hcl.EvalContext) (int, error) {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return 0, diags
	}
	val, err := convert.Convert(val, cty.Number)
	if err != nil {
		return 0, err
	}
	var out int
	if err := gocty.FromCtyValue(val, &out); err != nil {
		return 0, err
	}
	return out, nil
}

func evalStrings(expr hcl.Expression, evalCtx *hcl.EvalContext) ([]string, error) {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	val, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		return nil, err
	}
	var out []string
	if err := gocty.FromCtyValue(val, &out); err != nil {
		return nil, err
	}
	return out, nil
}
