package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Remote patient API
	patientAPIAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskwatch_patient_api_attempts_total",
			Help: "Requests made to the remote patient API by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	patientAPIRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskwatch_patient_api_retries_total",
			Help: "Retries scheduled against the remote patient API",
		},
		[]string{"reason"},
	)

	pagesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "riskwatch_patient_pages_fetched_total",
			Help: "Patient pages successfully fetched",
		},
	)

	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "riskwatch_patient_fetch_duration_seconds",
			Help:    "Duration of complete paginated fetch runs",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"status"},
	)

	// Assessments
	assessmentRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskwatch_assessment_runs_total",
			Help: "Assessment runs by final status",
		},
		[]string{"status"},
	)

	alertSetSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "riskwatch_alert_set_size",
			Help: "Size of each alert set in the latest assessment run",
		},
		[]string{"set"},
	)

	// HTTP
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskwatch_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "riskwatch_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

func RecordAttempt(operation, outcome string) {
	patientAPIAttempts.WithLabelValues(operation, outcome).Inc()
}

func RecordRetry(reason string) {
	patientAPIRetries.WithLabelValues(reason).Inc()
}

func RecordPage() {
	pagesFetched.Inc()
}

func ObserveFetch(status string, d time.Duration) {
	fetchDuration.WithLabelValues(status).Observe(d.Seconds())
}

func RecordRun(status string) {
	assessmentRuns.WithLabelValues(status).Inc()
}

// ObserveAlertSets publishes the sizes of the latest run's alert sets.
func ObserveAlertSets(highRisk, fever, dataQuality, seen int) {
	alertSetSize.WithLabelValues("high_risk").Set(float64(highRisk))
	alertSetSize.WithLabelValues("fever").Set(float64(fever))
	alertSetSize.WithLabelValues("data_quality").Set(float64(dataQuality))
	alertSetSize.WithLabelValues("patients_seen").Set(float64(seen))
}

func RecordHTTPRequest(method, path string, status int, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
