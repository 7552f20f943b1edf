package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline stages for error accounting
const (
	StageSchema    = "schema"
	StageTransform = "transform"
	StageInference = "inference"
	StageFormat    = "format"
)

var (
	// Prediction metrics
	PredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "machina_predictions_total",
			Help: "Total number of prediction requests",
		},
		[]string{"label", "status"}, // status: success|error
	)

	PredictionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "machina_prediction_duration_seconds",
			Help:    "End-to-end inference pipeline duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
	)

	PipelineErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "machina_pipeline_errors_total",
			Help: "Pipeline errors by stage",
		},
		[]string{"stage"}, // stage: schema|transform|inference|format
	)

	// Cache metrics
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "machina_prediction_cache_lookups_total",
			Help: "Prediction cache lookups",
		},
		[]string{"result"}, // result: hit|miss
	)

	// HTTP metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "machina_http_requests_total",
			Help: "HTTP requests by path and status code",
		},
		[]string{"path", "code"},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "machina_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

func init() {
	prometheus.MustRegister(PredictionsTotal)
	prometheus.MustRegister(PredictionDuration)
	prometheus.MustRegister(PipelineErrors)
	prometheus.MustRegister(CacheLookups)
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(RateLimited)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPrediction records one finished pipeline pass
func RecordPrediction(label string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	PredictionsTotal.WithLabelValues(label, status).Inc()
	PredictionDuration.Observe(duration.Seconds())
}

// RecordPipelineError records an error at a pipeline stage
func RecordPipelineError(stage string) {
	PipelineErrors.WithLabelValues(stage).Inc()
}

// RecordCacheLookup records a prediction cache lookup
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records a served HTTP request
func RecordHTTPRequest(path, code string) {
	HTTPRequests.WithLabelValues(path, code).Inc()
}
