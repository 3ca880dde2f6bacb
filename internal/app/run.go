package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/pathforge/internal/ctxlog"
	"github.com/specialistvlad/pathforge/internal/pathmgr"
	"github.com/specialistvlad/pathforge/internal/report"
	"github.com/specialistvlad/pathforge/internal/tracing"
)

// Run loads the job, builds the plan and exports it. With Serve set it then
// blocks until ctx is cancelled, keeping the health and metrics endpoints up.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.TraceFile != "" {
		if err := tracing.Init("pathforge", Version, a.config.TraceFile); err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer func() {
			if shutdownErr := tracing.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
				a.logger.Warn("Tracing shutdown failed", "error", shutdownErr)
			}
		}()
	}

	if a.config.HealthcheckPort > 0 {
		if err := a.startHealthcheckServer(ctx); err != nil {
			return err
		}
		defer func() {
			if closeErr := a.closeHealthcheckServer(ctx); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
	}

	a.logger.Debug("Loading job...", "job_path", a.config.JobPath)
	job, err := a.loader.Load(ctx, a.config.JobPath)
	if err != nil {
		return fmt.Errorf("failed to load job: %w", err)
	}
	a.logger.Debug("Job loaded.",
		"job", job.Name,
		"machine_count", len(job.Resource.Machines),
		"op_count", len(job.Network.Ops),
		"placement_count", len(job.Strategy.Placements),
	)

	mgr := pathmgr.New(
		pathmgr.WithMetrics(a.metrics),
		pathmgr.WithOptimization(!a.config.DisableOptimization),
	)
	if err := mgr.Init(ctx, job); err != nil {
		return fmt.Errorf("failed to initialize job %q: %w", job.Name, err)
	}

	summary, err := report.Build(mgr, job.Name)
	if err != nil {
		return fmt.Errorf("failed to summarize plan: %w", err)
	}
	a.manager = mgr
	a.summary = summary
	a.logger.Info("📐 Plan built.",
		"plan_id", summary.PlanID,
		"job", summary.Job,
		"chain_count", len(summary.Chains),
		"compute_task_count", summary.Tasks.Compute,
	)

	if err := a.export(ctx, summary); err != nil {
		return err
	}

	if a.config.Serve {
		a.logger.Info("Serving health and metrics until interrupted.")
		<-ctx.Done()
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// export writes and publishes summary according to the configuration.
func (a *App) export(ctx context.Context, summary *report.Summary) error {
	if a.config.OutPath != "" {
		if err := summary.WriteFile(a.config.OutPath); err != nil {
			return err
		}
		a.logger.Info("Plan written.", "path", a.config.OutPath)
	}

	if a.publisher == nil {
		return nil
	}
	payload, err := summary.ToMap()
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	ack, err := a.publisher.Publish(ctx, payload)
	if err != nil {
		return fmt.Errorf("failed to publish plan: %w", err)
	}
	a.logger.Debug("Scheduler response.", "ack", ack)
	return nil
}
