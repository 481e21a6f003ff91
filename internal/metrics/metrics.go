package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes.
const (
	OutcomeAccepted            = "accepted"
	OutcomeValidationFailed    = "validation_failed"
	OutcomeIntervalRejected    = "interval_rejected"
	OutcomeAvailabilityBlocked = "availability_blocked"
	OutcomeInFlight            = "in_flight"
	OutcomeError               = "error"
)

type Metrics struct {
	Submissions         *prometheus.CounterVec
	AvailabilityChanges *prometheus.CounterVec
	Searches            *prometheus.CounterVec
	LiveSubscribers     prometheus.Gauge
	AssistantReplies    *prometheus.CounterVec
	CompletionDuration  prometheus.Histogram
}

// New registers the service metrics on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_donor_submissions_total",
			Help: "Donor form submissions by outcome",
		}, []string{"outcome"}),
		AvailabilityChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_availability_changes_total",
			Help: "Successful availability writes by resulting status",
		}, []string{"status"}),
		Searches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_donor_searches_total",
			Help: "Donor searches by blood group",
		}, []string{"blood_group"}),
		LiveSubscribers: f.NewGauge(prometheus.GaugeOpts{
			Name: "bloodlink_live_feed_subscribers",
			Help: "Open live donor count subscriptions",
		}),
		AssistantReplies: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_assistant_replies_total",
			Help: "Assistant replies by source and urgency",
		}, []string{"source", "urgent"}),
		CompletionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloodlink_ai_completion_duration_seconds",
			Help:    "Latency of AI completion calls",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		}),
	}
}

// Nop returns metrics registered on a throwaway registry.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) Submission(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AvailabilityChanged(status string) {
	m.AvailabilityChanges.WithLabelValues(status).Inc()
}

func (m *Metrics) Searched(bloodGroup string) {
	m.Searches.WithLabelValues(bloodGroup).Inc()
}

func (m *Metrics) AssistantReplied(source string, urgent bool) {
	u := "false"
	if urgent {
		u = "true"
	}
	m.AssistantReplies.WithLabelValues(source, u).Inc()
}
