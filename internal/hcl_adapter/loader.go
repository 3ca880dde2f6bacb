package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/pathforge/internal/config"
	"github.com/specialistvlad/pathforge/internal/ctxlog"
	"github.com/specialistvlad/pathforge/internal/fsutil"
	"github.com/specialistvlad/pathforge/internal/planerr"
)

// DefaultJobName is used when no `job` block is present.
const DefaultJobName = "job"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths and merges the blocks into one job.
// Machines are translated first because placement device lists are evaluated
// against them.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Job, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	var merged fileRoot

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		merged.Jobs = append(merged.Jobs, root.Jobs...)
		merged.Machines = append(merged.Machines, root.Machines...)
		merged.Ops = append(merged.Ops, root.Ops...)
		merged.Placements = append(merged.Placements, root.Placements...)
	}

	job := &config.Job{Name: DefaultJobName}
	switch len(merged.Jobs) {
	case 0:
	case 1:
		job.Name = merged.Jobs[0].Name
	default:
		return nil, planerr.Configurationf("found %d job blocks, at most one is allowed", len(merged.Jobs))
	}

	if job.Resource, err = l.translateMachines(ctx, merged.Machines); err != nil {
		return nil, err
	}
	if job.Network, err = l.translateOps(ctx, merged.Ops); err != nil {
		return nil, err
	}
	evalCtx := newEvalContext(job.Resource)
	if job.Strategy, err = l.translatePlacements(ctx, merged.Placements, evalCtx); err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.",
		"job", job.Name,
		"machines", len(job.Resource.Machines),
		"ops", len(job.Network.Ops),
		"placements", len(job.Strategy.Placements),
	)
	return job, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			files, err := fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(f)
			}
		} else if filepath.Ext(path) == ".hcl" {
			add(path)
		}
	}
	return allFiles, nil
}
