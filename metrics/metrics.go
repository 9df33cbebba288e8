package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the waitlist counters. A zero Metrics (or a nil *Metrics) is usable and
// records nothing until Register is called with a registry.
type Metrics struct {
	signups          prometheus.Counter
	referrals        *prometheus.CounterVec
	scoreEvents      *prometheus.CounterVec
	contributions    *prometheus.CounterVec
	snapshotDuration prometheus.Histogram
	snapshotSize     prometheus.Gauge
	scoreRepairs     prometheus.Counter

	registerOnce sync.Once
}

// Register registers the metrics with registry. A nil registry is a no-op and the call is
// idempotent.
func (m *Metrics) Register(registry prometheus.Registerer) {
	if m == nil || registry == nil {
		return
	}
	m.registerOnce.Do(func() {
		factory := promauto.With(registry)

		m.signups = factory.NewCounter(prometheus.CounterOpts{
			Name: "waitlist_signups_total",
			Help: "Total number of new waitlist entrants",
		})
		m.referrals = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "waitlist_referrals_total",
			Help: "Total number of signups made with a referral code",
		}, []string{"credited"})
		m.scoreEvents = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "waitlist_score_events_total",
			Help: "Total number of point-source mutations by source",
		}, []string{"source"})
		m.contributions = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "waitlist_contributions_total",
			Help: "Total number of contributions by lifecycle step",
		}, []string{"status"})
		m.snapshotDuration = factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "waitlist_snapshot_duration_seconds",
			Help:    "Duration of global snapshot transactions",
			Buckets: prometheus.DefBuckets,
		})
		m.snapshotSize = factory.NewGauge(prometheus.GaugeOpts{
			Name: "waitlist_snapshot_entrants",
			Help: "Number of entrants ranked by the most recent global snapshot",
		})
		m.scoreRepairs = factory.NewCounter(prometheus.CounterOpts{
			Name: "waitlist_score_repairs_total",
			Help: "Total number of entrants whose stored total score was repaired by the audit",
		})
	})
}

func (m *Metrics) IncSignup() {
	if m != nil && m.signups != nil {
		m.signups.Inc()
	}
}

func (m *Metrics) IncReferral(credited bool) {
	if m == nil || m.referrals == nil {
		return
	}
	label := "false"
	if credited {
		label = "true"
	}
	m.referrals.WithLabelValues(label).Inc()
}

func (m *Metrics) IncScoreEvent(source string) {
	if m != nil && m.scoreEvents != nil {
		m.scoreEvents.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) IncContribution(status string) {
	if m != nil && m.contributions != nil {
		m.contributions.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) ObserveSnapshot(d time.Duration, entrants int) {
	if m == nil || m.snapshotDuration == nil {
		return
	}
	m.snapshotDuration.Observe(d.Seconds())
	m.snapshotSize.Set(float64(entrants))
}

func (m *Metrics) AddScoreRepairs(n int) {
	if m != nil && m.scoreRepairs != nil && n > 0 {
		m.scoreRepairs.Add(float64(n))
	}
}
