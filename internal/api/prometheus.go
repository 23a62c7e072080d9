package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wxkit/dewpoint/internal/storage"
)

var (
	computationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dewpoint",
			Name:      "computations_total",
			Help:      "Total number of dew point computations",
		},
		[]string{"unit", "source"},
	)

	computationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dewpoint",
			Name:      "computation_errors_total",
			Help:      "Total number of rejected computation requests",
		},
		[]string{"reason"},
	)

	lastDewPoint = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dewpoint",
			Name:      "last_dew_point_celsius",
			Help:      "Dew point of the most recent computation, in Celsius",
		},
	)

	lastTemperature = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dewpoint",
			Name:      "last_temperature_celsius",
			Help:      "Input temperature of the most recent computation, in Celsius",
		},
	)

	lastHumidity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dewpoint",
			Name:      "last_humidity_percent",
			Help:      "Input relative humidity of the most recent computation",
		},
	)

	historyPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dewpoint",
			Name:      "history_pruned_total",
			Help:      "Total number of history records removed by retention pruning",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(
		computationsTotal,
		computationErrors,
		lastDewPoint,
		lastTemperature,
		lastHumidity,
		historyPruned,
	)
}

// handlePrometheusMetrics exposes Prometheus metrics.
func (s *Server) handlePrometheusMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordComputation updates Prometheus metrics for a computation.
// Exported so it can be called outside the request path.
func RecordComputation(comp *storage.Computation) {
	computationsTotal.WithLabelValues(comp.Unit, comp.Source).Inc()
	lastDewPoint.Set(comp.DewPointCelsius())
	lastTemperature.Set(comp.TemperatureCelsius())
	lastHumidity.Set(comp.Humidity)
}

// RecordComputationError counts a rejected computation request.
func RecordComputationError(reason string) {
	computationErrors.WithLabelValues(reason).Inc()
}

// RecordPruned counts history records removed by the retention job.
func RecordPruned(n int64) {
	historyPruned.Add(float64(n))
}
