// Package metrics counts batches and units with Prometheus collectors and can
// export them in the node-exporter textfile format after a run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/stackvity/converty/pkg/converter"
)

// Outcome labels for batches.
const (
	OutcomeSuccess    = "success"
	OutcomePartial    = "partial"
	OutcomeFailed     = "failed"
	OutcomeIncomplete = "incomplete"
)

// Recorder is a converter.Hooks decorator that records metrics before
// forwarding each event to the wrapped hooks.
type Recorder struct {
	next     converter.Hooks
	registry *prometheus.Registry

	batchesTotal    *prometheus.CounterVec
	batchDuration   *prometheus.HistogramVec
	unitsTotal      *prometheus.CounterVec
	unitDuration    *prometheus.HistogramVec
	archivesTotal   prometheus.Counter
	unitsInProgress prometheus.Gauge
}

// NewRecorder wraps next. A nil next is replaced by converter.NoOpHooks.
func NewRecorder(next converter.Hooks) *Recorder {
	if next == nil {
		next = &converter.NoOpHooks{}
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Recorder{
		next:     next,
		registry: registry,
		batchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "converty_batches_total",
			Help: "Total number of conversion batches by direction and outcome.",
		}, []string{"direction", "outcome"}),
		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "converty_batch_duration_seconds",
			Help:    "Duration of conversion batches.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"direction"}),
		unitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "converty_units_total",
			Help: "Total number of converted files by final status.",
		}, []string{"status"}),
		unitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "converty_unit_duration_seconds",
			Help:    "Duration of single file conversions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		archivesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "converty_archives_total",
			Help: "Total number of archives written.",
		}),
		unitsInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "converty_units_in_progress",
			Help: "Files currently being converted.",
		}),
	}

	registry.MustRegister(r.batchesTotal)
	registry.MustRegister(r.batchDuration)
	registry.MustRegister(r.unitsTotal)
	registry.MustRegister(r.unitDuration)
	registry.MustRegister(r.archivesTotal)
	registry.MustRegister(r.unitsInProgress)
	return r
}

// Registry returns the registry holding all collectors.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// OnBatchStart implements converter.Hooks.
func (r *Recorder) OnBatchStart(batchID string, total int) error {
	return r.next.OnBatchStart(batchID, total)
}

// OnUnitStatus implements converter.Hooks. Safe for concurrent use.
func (r *Recorder) OnUnitStatus(path string, status converter.Status, message string, duration time.Duration) error {
	switch status {
	case converter.StatusProcessing:
		r.unitsInProgress.Inc()
	case converter.StatusSuccess, converter.StatusFailed:
		r.unitsInProgress.Dec()
		r.unitsTotal.WithLabelValues(string(status)).Inc()
		r.unitDuration.WithLabelValues(string(status)).Observe(duration.Seconds())
	}
	return r.next.OnUnitStatus(path, status, message, duration)
}

// OnBatchComplete implements converter.Hooks.
func (r *Recorder) OnBatchComplete(res converter.Result) error {
	r.batchesTotal.WithLabelValues(string(res.Direction), Outcome(res)).Inc()
	r.batchDuration.WithLabelValues(string(res.Direction)).Observe(res.Duration.Seconds())
	if res.Archive != "" {
		r.archivesTotal.Inc()
	}
	return r.next.OnBatchComplete(res)
}

// Outcome classifies a finished batch. A batch that stopped before every unit
// ran (cancelled, or no engine) is incomplete.
func Outcome(res converter.Result) string {
	done := res.Succeeded() + res.Failed()
	switch {
	case done < res.Total:
		return OutcomeIncomplete
	case res.Failed() == 0:
		return OutcomeSuccess
	case res.Succeeded() == 0:
		return OutcomeFailed
	}
	return OutcomePartial
}

// WriteTextfile writes the current values to path in the Prometheus text
// exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
