// Package metrics exposes Prometheus collectors for the poll loop and the
// event log.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	PollsTotal     *prometheus.CounterVec
	EventsRecorded prometheus.Counter
	WatchedRepos   prometheus.Gauge
	EventLogSize   prometheus.Gauge
	CycleDuration  prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.PollsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "repowatch",
		Name:      "polls_total",
		Help:      "Poll attempts by outcome (updated, unchanged, removed, rejected, error).",
	}, []string{"outcome"})

	m.EventsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "repowatch",
		Name:      "events_recorded_total",
		Help:      "Classified events merged into the log.",
	})

	m.WatchedRepos = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "repowatch",
		Name:      "watched_repos",
		Help:      "Repos currently in the watch registry.",
	})

	m.EventLogSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "repowatch",
		Name:      "event_log_size",
		Help:      "Events currently held in the bounded log.",
	})

	m.CycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "repowatch",
		Name:      "poll_cycle_duration_seconds",
		Help:      "Wall time of one fan-out poll cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	m.registry.MustRegister(
		m.PollsTotal,
		m.EventsRecorded,
		m.WatchedRepos,
		m.EventLogSize,
		m.CycleDuration,
	)
	return m
}

// Handler serves the text exposition for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
