package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/pathforge/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("pathforge", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Pathforge - plans the data path and the model update, load and save paths
of a distributed training job.

Usage:
  pathforge [options] [JOB_PATH]

Arguments:
  JOB_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	jobFlag := flagSet.String("job", "", "Path to the job file or directory.")
	jFlag := flagSet.String("j", "", "Path to the job file or directory (shorthand).")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health and metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	outFlag := flagSet.String("out", "", "Write the plan summary as YAML to this file.")
	traceFileFlag := flagSet.String("trace-file", "", "Export planning spans to this file.")
	noOptFlag := flagSet.Bool("no-optimize", false, "Skip the data path optimization passes.")
	serveFlag := flagSet.Bool("serve", false, "Keep serving health and metrics after planning until interrupted.")
	schedURLFlag := flagSet.String("scheduler-url", "", "Socket.io URL of the scheduler to publish the plan to.")
	schedNSFlag := flagSet.String("scheduler-namespace", app.DefaultSchedulerNamespace, "Socket.io namespace of the scheduler.")
	schedEventFlag := flagSet.String("scheduler-event", app.DefaultSchedulerEvent, "Event name the plan is emitted on.")
	schedAckFlag := flagSet.String("scheduler-ack-event", "", "Event to wait for after publishing. Empty does not wait.")
	schedTimeoutFlag := flagSet.Duration("scheduler-timeout", app.DefaultSchedulerTimeout, "Timeout for connecting and waiting for the ack event.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *jobFlag != "" {
		path = *jobFlag
	} else if *jFlag != "" {
		path = *jFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Job path determined.", "path", path)

	if path == "" {
		slog.Debug("No job path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(app.Config{
		JobPath:             path,
		LogFormat:           strings.ToLower(*logFormatFlag),
		LogLevel:            strings.ToLower(*logLevelFlag),
		HealthcheckPort:     *healthPortFlag,
		OutPath:             *outFlag,
		TraceFile:           *traceFileFlag,
		DisableOptimization: *noOptFlag,
		Serve:               *serveFlag,
		SchedulerURL:        *schedURLFlag,
		SchedulerNamespace:  *schedNSFlag,
		SchedulerEvent:      *schedEventFlag,
		SchedulerAckEvent:   *schedAckFlag,
		SchedulerTimeout:    *schedTimeoutFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
