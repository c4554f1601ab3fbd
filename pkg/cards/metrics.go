package cards

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what a refresh did. Each run owns its registry so tests and
// repeated runs never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	reconstructFailures *prometheus.CounterVec
	rowsReconstructed   *prometheus.CounterVec
	rowsNew             *prometheus.CounterVec
	datasetsSaved       prometheus.Counter
}

// NewMetrics builds the counters on a fresh registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	m := &Metrics{registry: registry}
	m.reconstructFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cardstats",
		Subsystem: "refresh",
		Name:      "reconstruct_failures_total",
		Help:      "Match rows whose detail page could not be reconstructed, by failure kind",
	}, []string{"team", "kind"})
	m.rowsReconstructed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cardstats",
		Subsystem: "refresh",
		Name:      "rows_reconstructed_total",
		Help:      "Match rows whose caution buckets were rebuilt",
	}, []string{"team"})
	m.rowsNew = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cardstats",
		Subsystem: "refresh",
		Name:      "rows_new_total",
		Help:      "Match rows newer than the persisted high-water mark",
	}, []string{"team"})
	m.datasetsSaved = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "cardstats",
		Subsystem: "refresh",
		Name:      "datasets_saved_total",
		Help:      "Team datasets written to the store",
	})
	return m
}

// Registry exposes the registry for gathering
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Record adds one merge outcome
func (m *Metrics) Record(team string, res *MergeResult) {
	if m == nil || res == nil {
		return
	}
	m.rowsNew.WithLabelValues(team).Add(float64(res.New))
	m.rowsReconstructed.WithLabelValues(team).Add(float64(res.Reconstructed))
	for _, f := range res.Failures {
		m.reconstructFailures.WithLabelValues(team, string(f.Kind)).Inc()
	}
	if res.Saved {
		m.datasetsSaved.Inc()
	}
}

// WriteTextfile dumps the registry in the node_exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
