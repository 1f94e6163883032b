// Package metrics exposes Prometheus collectors for the contribution engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements the contribution-engine metrics port on a dedicated
// registry so /metrics only carries service collectors.
type Prometheus struct {
	registry *prometheus.Registry

	eventsRecorded   *prometheus.CounterVec
	versionConflicts prometheus.Counter
	recalculations   *prometheus.CounterVec
	outboxPublished  prometheus.Counter
}

func NewPrometheus() *Prometheus {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	return &Prometheus{
		registry: registry,
		eventsRecorded: auto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "paperportal",
				Subsystem: "contribution",
				Name:      "events_recorded_total",
				Help:      "Total number of contribution events appended to the ledger",
			},
			[]string{"kind"},
		),
		versionConflicts: auto.NewCounter(prometheus.CounterOpts{
			Namespace: "paperportal",
			Subsystem: "contribution",
			Name:      "state_version_conflicts_total",
			Help:      "Total number of optimistic-concurrency conflicts on state commits",
		}),
		recalculations: auto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "paperportal",
				Subsystem: "contribution",
				Name:      "recalculations_total",
				Help:      "Total number of full recalculation runs by outcome",
			},
			[]string{"outcome"},
		),
		outboxPublished: auto.NewCounter(prometheus.CounterOpts{
			Namespace: "paperportal",
			Subsystem: "contribution",
			Name:      "outbox_published_total",
			Help:      "Total number of outbox messages relayed to the event bus",
		}),
	}
}

func (p *Prometheus) EventRecorded(kind string) {
	p.eventsRecorded.WithLabelValues(kind).Inc()
}

func (p *Prometheus) VersionConflict() {
	p.versionConflicts.Inc()
}

func (p *Prometheus) RecalculationCompleted(outcome string) {
	p.recalculations.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) OutboxPublished() {
	p.outboxPublished.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
