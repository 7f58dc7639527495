package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce     sync.Once
	requestsTotal    *prometheus.CounterVec
	latencySeconds   *prometheus.HistogramVec
	errorsTotal      *prometheus.CounterVec
	enrollmentsTotal *prometheus.CounterVec
	completionEvents *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edubridge_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "edubridge_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edubridge_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		enrollmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edubridge_enrollments_total",
			Help: "Enrollment mutations grouped by outcome.",
		}, []string{"action", "outcome"})

		completionEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edubridge_content_completions_total",
			Help: "Content completion and reset events.",
		}, []string{"action"})

		prometheus.MustRegister(requestsTotal, latencySeconds, errorsTotal, enrollmentsTotal, completionEvents)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// Enrollments exposes the enrollment mutation counter.
func Enrollments() *prometheus.CounterVec {
	RegisterMetrics()
	return enrollmentsTotal
}

// Completions exposes the content completion event counter.
func Completions() *prometheus.CounterVec {
	RegisterMetrics()
	return completionEvents
}
