package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "assetfin"

// Metrics is nil-safe: a nil *Metrics records nothing.
type Metrics struct {
	schedulesComputed *prometheus.CounterVec
	scheduleReplaced  *prometheus.CounterVec
	refreshAssets     *prometheus.CounterVec
	refreshDuration   prometheus.Histogram
	gatherer          prometheus.Gatherer
}

// New registers the collectors on reg. Passing a fresh prometheus.NewRegistry
// keeps tests isolated from the global registry.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		schedulesComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedules_computed_total",
			Help:      "Schedules computed by the engines.",
		}, []string{"kind"}),
		scheduleReplaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_replacements_total",
			Help:      "Schedule replacements by outcome.",
		}, []string{"kind", "outcome"}),
		refreshAssets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "valuation_refresh_assets_total",
			Help:      "Assets processed by the valuation refresh by outcome.",
		}, []string{"outcome"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "valuation_refresh_duration_seconds",
			Help:      "Wall time of a full valuation refresh run.",
			Buckets:   []float64{1, 5, 15, 60, 300, 900, 3600},
		}),
		gatherer: reg,
	}
	reg.MustRegister(m.schedulesComputed, m.scheduleReplaced, m.refreshAssets, m.refreshDuration)
	return m
}

func (m *Metrics) ScheduleComputed(kind string) {
	if m == nil {
		return
	}
	m.schedulesComputed.WithLabelValues(kind).Inc()
}

func (m *Metrics) ScheduleReplaced(kind string, err error) {
	if m == nil {
		return
	}
	m.scheduleReplaced.WithLabelValues(kind, outcome(err)).Inc()
}

func (m *Metrics) RefreshAsset(err error) {
	if m == nil {
		return
	}
	m.refreshAssets.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) RefreshDone(d time.Duration) {
	if m == nil {
		return
	}
	m.refreshDuration.Observe(d.Seconds())
}

// Handler serves the registry this Metrics was built on.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
