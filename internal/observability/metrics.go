package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce      sync.Once
	apiRequestsTotal  *prometheus.CounterVec
	apiLatencySeconds *prometheus.HistogramVec
	apiErrorsTotal    *prometheus.CounterVec
	statementsTotal   *prometheus.CounterVec
	fallaciesInjected prometheus.Counter
	challengesTotal   *prometheus.CounterVec
	flagsRaisedTotal  *prometheus.CounterVec
	sessionsCompleted prometheus.Counter
	overrideAttempts  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the debate API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "debate_api_requests_total",
			Help: "Total number of debate API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "debate_api_latency_seconds",
			Help:    "Latency distribution for debate API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "debate_api_errors_total",
			Help: "Total number of error responses returned by debate endpoints.",
		}, []string{"method", "route", "status"})

		statementsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "debate_statements_total",
			Help: "Total number of accepted debate statements by author type.",
		}, []string{"post_type"})

		fallaciesInjected = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "debate_fallacies_injected_total",
			Help: "Total number of opponent statements generated with an injected fallacy.",
		})

		challengesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "debate_challenges_total",
			Help: "Total number of adjudicated fallacy challenges by verdict.",
		}, []string{"verdict"})

		flagsRaisedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "debate_content_flags_total",
			Help: "Total number of moderation flags raised by category.",
		}, []string{"flag_type"})

		sessionsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "debate_sessions_completed_total",
			Help: "Total number of debate sessions that reached the final grade.",
		})

		overrideAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "debate_override_attempts_total",
			Help: "Total number of deadline override verification attempts by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			statementsTotal, fallaciesInjected, challengesTotal,
			flagsRaisedTotal, sessionsCompleted, overrideAttempts,
		)
	})
}

// APIRequests exposes the counter for debate API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for debate API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for debate API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// StatementsTotal exposes the counter for accepted statements.
func StatementsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return statementsTotal
}

// FallaciesInjected exposes the counter for injected fallacies.
func FallaciesInjected() prometheus.Counter {
	RegisterMetrics()
	return fallaciesInjected
}

// ChallengesTotal exposes the counter for adjudicated challenges.
func ChallengesTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return challengesTotal
}

// FlagsRaised exposes the counter for moderation flags.
func FlagsRaised() *prometheus.CounterVec {
	RegisterMetrics()
	return flagsRaisedTotal
}

// SessionsCompleted exposes the counter for completed sessions.
func SessionsCompleted() prometheus.Counter {
	RegisterMetrics()
	return sessionsCompleted
}

// OverrideAttempts exposes the counter for override verification attempts.
func OverrideAttempts() *prometheus.CounterVec {
	RegisterMetrics()
	return overrideAttempts
}
