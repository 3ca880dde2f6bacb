package app

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	JobPath string // hcl file or directory

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// OutPath receives the YAML plan summary when set.
	OutPath string
	// TraceFile receives exported spans. Empty disables tracing.
	TraceFile string
	// DisableOptimization skips the data path optimization passes.
	DisableOptimization bool
	// Serve keeps the health and metrics server running after planning
	// until the context is cancelled.
	Serve bool

	SchedulerURL       string
	SchedulerNamespace string
	SchedulerEvent     string
	SchedulerAckEvent  string
	SchedulerTimeout   time.Duration
}

// Defaults applied by NewConfig.
const (
	DefaultSchedulerNamespace = "/"
	DefaultSchedulerEvent     = "plan"
	DefaultSchedulerTimeout   = 15 * time.Second
)

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.JobPath == "" {
		return nil, errors.New("JobPath is a required configuration field and cannot be empty")
	}

	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "json"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d: must be between 0 and 65535", cfg.HealthcheckPort)
	}
	if cfg.Serve && cfg.HealthcheckPort == 0 {
		return nil, errors.New("serve mode requires a healthcheck port")
	}

	if cfg.SchedulerTimeout < 0 {
		return nil, fmt.Errorf("invalid scheduler timeout %v: must not be negative", cfg.SchedulerTimeout)
	}
	if cfg.SchedulerURL != "" {
		u, err := url.Parse(cfg.SchedulerURL)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduler URL: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid scheduler URL %q: must include scheme and host", cfg.SchedulerURL)
		}
		if cfg.SchedulerNamespace == "" {
			cfg.SchedulerNamespace = DefaultSchedulerNamespace
		}
		if cfg.SchedulerEvent == "" {
			cfg.SchedulerEvent = DefaultSchedulerEvent
		}
		if cfg.SchedulerTimeout == 0 {
			cfg.SchedulerTimeout = DefaultSchedulerTimeout
		}
	}

	return &cfg, nil
}
