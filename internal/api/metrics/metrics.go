// Package metrics defines the custom Prometheus metrics of the planner API
// and adapts them to ports.Metrics. It is the single source of truth for
// metric names, labels and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/abhicism/dailyplanner/internal/core/ports"
)

const namespace = "planner"

// Recorder holds the planner collectors, registered with one registry.
type Recorder struct {
	// ── Auth metrics ──────────────────────────────────────────────────────────

	// registrations counts registration attempts.
	// Label:
	//   - result: "created", "duplicate", "invalid" or "error"
	registrations *prometheus.CounterVec

	// logins counts login attempts.
	// Label:
	//   - result: "success", "unknown_user", "bad_password", "throttled" or "error"
	logins *prometheus.CounterVec

	// sessions counts bearer token resolutions on protected routes.
	// Label:
	//   - result: "ok", "invalid_token", "unknown_user" or "error"
	sessions *prometheus.CounterVec

	// ── Planner metrics ───────────────────────────────────────────────────────

	daysSaved    prometheus.Counter
	payloadBytes prometheus.Histogram
}

var _ ports.Metrics = (*Recorder)(nil)

// New registers the planner collectors with reg. A nil reg means the
// Prometheus default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		registrations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "Total number of registration attempts, by result.",
			},
			[]string{"result"},
		),
		logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Total number of login attempts, by result.",
			},
			[]string{"result"},
		),
		sessions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_resolutions_total",
				Help:      "Total number of bearer token resolutions, by result.",
			},
			[]string{"result"},
		),
		daysSaved: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "day_entries_saved_total",
				Help:      "Total number of day entries written (created or overwritten).",
			},
		),
		payloadBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "day_entry_payload_bytes",
				Help:      "Size in bytes of the compact payload stored by save_day.",
				Buckets:   prometheus.ExponentialBuckets(64, 4, 8), // 64B … 1MiB
			},
		),
	}
}

func (r *Recorder) RegistrationAttempt(result string) {
	r.registrations.WithLabelValues(result).Inc()
}

func (r *Recorder) LoginAttempt(result string) {
	r.logins.WithLabelValues(result).Inc()
}

func (r *Recorder) SessionResolved(result string) {
	r.sessions.WithLabelValues(result).Inc()
}

func (r *Recorder) DayEntrySaved(payloadBytes int) {
	r.daysSaved.Inc()
	r.payloadBytes.Observe(float64(payloadBytes))
}
