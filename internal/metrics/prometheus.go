package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ForecastRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aqi_forecast_requests_total",
			Help: "Total number of forecast requests",
		},
		[]string{"status"}, // status: ok|invalid|data_unavailable|model_output|error
	)

	ForecastDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aqi_forecast_duration_seconds",
			Help:    "Forecast computation latency in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	ForecastHorizon = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aqi_forecast_horizon_days",
			Help:    "Requested forecast horizon in days",
			Buckets: []float64{1, 3, 7, 14, 30, 60, 90},
		},
	)

	SourceAudits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aqi_source_audit_total",
			Help: "Source audit runs by source and outcome",
		},
		[]string{"source", "status"}, // status: ok|drift|error
	)
)

func init() {
	prometheus.MustRegister(
		ForecastRequests,
		ForecastDuration,
		ForecastHorizon,
		SourceAudits,
	)
}

// ObserveForecast records one forecast call.
func ObserveForecast(horizonDays int, elapsed time.Duration, status string) {
	ForecastRequests.WithLabelValues(status).Inc()
	ForecastDuration.Observe(elapsed.Seconds())
	if horizonDays > 0 {
		ForecastHorizon.Observe(float64(horizonDays))
	}
}

// ObserveAudit records one source audit outcome.
func ObserveAudit(source, status string) {
	SourceAudits.WithLabelValues(source, status).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
