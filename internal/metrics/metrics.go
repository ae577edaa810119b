// Package metrics exposes Prometheus collectors for provenance builds and
// searches.
package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/provview/pkg/domain"
)

// Search outcomes used as label values.
const (
	OutcomeHit     = "hit"
	OutcomeNoMatch = "no_match"
	OutcomeInvalid = "invalid"
)

// Metrics owns a private registry so several servers can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	ActionsVisited *prometheus.CounterVec
	Truncations    prometheus.Counter
	Loads          *prometheus.CounterVec
	Searches       *prometheus.CounterVec
	SearchDuration prometheus.Histogram
	SearchHits     prometheus.Histogram
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ActionsVisited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provview_actions_visited_total",
				Help: "Total number of actions expanded while building provenance",
			},
			[]string{"type"},
		),
		Truncations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "provview_branches_truncated_total",
			Help: "Total number of provenance branches cut short by missing documents",
		}),
		Loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provview_results_loaded_total",
				Help: "Total number of result loads by outcome",
			},
			[]string{"outcome"},
		),
		Searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provview_searches_total",
				Help: "Total number of evaluated queries by outcome",
			},
			[]string{"outcome"},
		),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "provview_search_duration_seconds",
			Help:    "Duration of query evaluation",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		SearchHits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "provview_search_hits",
			Help:    "Number of nodes matched per successful query",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	m.registry.MustRegister(
		m.ActionsVisited,
		m.Truncations,
		m.Loads,
		m.Searches,
		m.SearchDuration,
		m.SearchHits,
	)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks records build and search events.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnActionVisited: func(_ context.Context, e *domain.ActionEvent) {
			m.ActionsVisited.WithLabelValues(e.Type).Inc()
		},
		OnBranchTruncated: func(context.Context, *domain.TruncationEvent) {
			m.Truncations.Inc()
		},
		OnSearch: func(_ context.Context, e *domain.SearchEvent) {
			outcome := SearchOutcome(e.Err)
			m.Searches.WithLabelValues(outcome).Inc()
			m.SearchDuration.Observe(e.Duration.Seconds())
			if outcome == OutcomeHit {
				m.SearchHits.Observe(float64(e.Hits))
			}
		},
	}
}

// ObserveLoad counts one result load.
func (m *Metrics) ObserveLoad(err error) {
	switch {
	case err == nil:
		m.Loads.WithLabelValues("ok").Inc()
	case errors.Is(err, domain.ErrInvalidArchive):
		m.Loads.WithLabelValues("invalid").Inc()
	default:
		m.Loads.WithLabelValues("error").Inc()
	}
}

// SearchOutcome classifies a search error.
func SearchOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeHit
	case errors.Is(err, domain.ErrNoMatches):
		return OutcomeNoMatch
	}
	return OutcomeInvalid
}
