package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/pathforge/internal/planerr"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ObserveStep("sort", 3*time.Millisecond)
	r.RecordFailure("update-path", planerr.Configurationf("no replicas"))
	r.RecordSuccess()
	r.SetPlan(2, map[string]int{"compute": 5, "boxing": 1}, map[string]int{"update": 32})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("update-path", "configuration")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.inits.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.inits.WithLabelValues("failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.chains))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.tasks.WithLabelValues("compute")))
	assert.Equal(t, 32.0, testutil.ToFloat64(r.pathNodes.WithLabelValues("update")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.stepDuration))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveStep("sort", time.Second)
		r.RecordFailure("sort", nil)
		r.RecordSuccess()
		r.SetPlan(1, nil, nil)
	})
}
