package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for the scheduling interview.
type SchedulingMetrics struct {
	sessionsStarted    *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	submissions        *prometheus.CounterVec
	submissionLatency  prometheus.Histogram
	fallbackMessages   *prometheus.CounterVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "interview",
			Name:      "sessions_started_total",
			Help:      "Scheduling interviews started",
		}, []string{"locale"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "interview",
			Name:      "validation_failures_total",
			Help:      "Rejected answers by slot",
		}, []string{"slot"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "interview",
			Name:      "submissions_total",
			Help:      "Appointment submissions by outcome",
		}, []string{"outcome"}),
		submissionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scheduler",
			Subsystem: "interview",
			Name:      "submission_latency_seconds",
			Help:      "Latency of the scheduling backend call",
			Buckets:   prometheus.DefBuckets,
		}),
		fallbackMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "chat",
			Name:      "fallback_messages_total",
			Help:      "Utterances routed to the general chat backend",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessionsStarted, m.validationFailures, m.submissions, m.submissionLatency, m.fallbackMessages)
	return m
}

func (m *SchedulingMetrics) ObserveSessionStarted(locale string) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(locale).Inc()
}

func (m *SchedulingMetrics) ObserveValidationFailure(slot string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(slot).Inc()
}

// ObserveSubmission records one backend call. outcome is "success" or "failure".
func (m *SchedulingMetrics) ObserveSubmission(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
	m.submissionLatency.Observe(seconds)
}

func (m *SchedulingMetrics) ObserveFallback(status string) {
	if m == nil {
		return
	}
	m.fallbackMessages.WithLabelValues(status).Inc()
}
