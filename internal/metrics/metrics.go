// Package metrics exposes Prometheus instruments describing the plans the
// Path Manager builds.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/specialistvlad/pathforge/internal/planerr"
)

const namespace = "pathforge"

// Recorder holds the instruments. A nil *Recorder is valid and records nothing.
type Recorder struct {
	stepDuration *prometheus.HistogramVec
	failures     *prometheus.CounterVec
	inits        *prometheus.CounterVec
	chains       prometheus.Gauge
	tasks        *prometheus.GaugeVec
	pathNodes    *prometheus.GaugeVec
}

// New registers every instrument with reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		// stepDuration measures each initialization step.
		// Labels: step (identifiers, data-path, sort, update-path, load-path, save-path)
		stepDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "init",
			Name:      "step_duration_seconds",
			Help:      "Duration of each path manager initialization step",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"step"}),

		// failures counts failed initializations.
		// Labels: step, kind (structural, configuration, not_found, identifier)
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "init",
			Name:      "failures_total",
			Help:      "Failed path manager initializations by step and error kind",
		}, []string{"step", "kind"}),

		inits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "init",
			Name:      "total",
			Help:      "Path manager initializations by outcome",
		}, []string{"status"}),

		chains: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "plan",
			Name:      "chains",
			Help:      "Number of chains in the current plan",
		}),

		// tasks tracks task graph size.
		// Labels: kind (compute, boxing, copy_comm_net)
		tasks: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "plan",
			Name:      "tasks",
			Help:      "Number of task graph nodes in the current plan",
		}, []string{"kind"}),

		// pathNodes tracks the total size of the per-chain model paths.
		// Labels: path (update, load, save)
		pathNodes: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "plan",
			Name:      "path_nodes",
			Help:      "Total nodes across all per-chain model paths",
		}, []string{"path"}),
	}
}

// ObserveStep records how long step took.
func (r *Recorder) ObserveStep(step string, d time.Duration) {
	if r == nil {
		return
	}
	r.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

// RecordFailure counts a failed initialization.
func (r *Recorder) RecordFailure(step string, err error) {
	if r == nil {
		return
	}
	r.failures.WithLabelValues(step, planerr.KindOf(err)).Inc()
	r.inits.WithLabelValues("failure").Inc()
}

// RecordSuccess counts a completed initialization.
func (r *Recorder) RecordSuccess() {
	if r == nil {
		return
	}
	r.inits.WithLabelValues("success").Inc()
}

// SetPlan publishes the size of a freshly built plan.
func (r *Recorder) SetPlan(chains int, tasksByKind, pathNodes map[string]int) {
	if r == nil {
		return
	}
	r.chains.Set(float64(chains))
	for kind, n := range tasksByKind {
		r.tasks.WithLabelValues(kind).Set(float64(n))
	}
	for path, n := range pathNodes {
		r.pathNodes.WithLabelValues(path).Set(float64(n))
	}
}
