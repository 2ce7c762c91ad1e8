package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"path", "method", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"},
	)
	Predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of successful predictions by label",
		}, []string{"label"},
	)
	ModelLoadAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_load_attempts_total",
			Help: "Total number of model load attempts by result",
		}, []string{"result"},
	)
)

func init() {
	prometheus.MustRegister(RequestCount, RequestDuration, Predictions, ModelLoadAttempts)
}
