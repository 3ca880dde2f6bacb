package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/specialistvlad/pathforge/internal/config"
	"github.com/specialistvlad/pathforge/internal/ctxlog"
	"github.com/specialistvlad/pathforge/internal/metrics"
	"github.com/specialistvlad/pathforge/internal/pathmgr"
	"github.com/specialistvlad/pathforge/internal/publish"
	"github.com/specialistvlad/pathforge/internal/report"
)

// Version is reported in traces. It is overridden at link time.
var Version = "dev"

// Publisher hands a finished plan to a scheduler.
type Publisher interface {
	Publish(ctx context.Context, payload map[string]any) (any, error)
}

// Option customizes an App.
type Option func(*App)

// WithPublisher replaces the socket.io publisher built from the scheduler
// settings.
func WithPublisher(p Publisher) Option {
	return func(a *App) { a.publisher = p }
}

// WithRegistry makes the App record metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) { a.registry = reg }
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	loader    config.Loader
	registry  *prometheus.Registry
	metrics   *metrics.Recorder
	publisher Publisher

	httpServer *http.Server

	manager *pathmgr.Manager
	summary *report.Summary
}

// NewApp is the constructor for the main application. It returns an App with
// its own isolated logger and metrics registry. A nil config or loader is a
// programmer error and panics.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, opts ...Option) *App {
	if cfg == nil {
		panic("app: nil config")
	}
	if loader == nil {
		panic("app: nil loader")
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		loader: loader,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	a.metrics = metrics.New(a.registry)

	if a.publisher == nil && cfg.SchedulerURL != "" {
		a.publisher = publish.New(publish.Config{
			URL:       cfg.SchedulerURL,
			Namespace: cfg.SchedulerNamespace,
			Event:     cfg.SchedulerEvent,
			AckEvent:  cfg.SchedulerAckEvent,
			Timeout:   cfg.SchedulerTimeout,
		})
		logger.Debug("Scheduler publisher configured.", "url", cfg.SchedulerURL, "event", cfg.SchedulerEvent)
	}

	return a
}

// Context returns ctx carrying the App's logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Manager returns the Path Manager of the last successful Run, or nil.
func (a *App) Manager() *pathmgr.Manager { return a.manager }

// Summary returns the plan summary of the last successful Run, or nil.
func (a *App) Summary() *report.Summary { return a.summary }

// Registry returns the metrics registry served on /metrics.
func (a *App) Registry() *prometheus.Registry { return a.registry }
