// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Calculation metrics
	RecordsProcessed     prometheus.Counter
	EvaluationsPerformed prometheus.Counter
	RecordsSkipped       *prometheus.CounterVec
	CalculationErrors    *prometheus.CounterVec

	// Pipeline metrics
	PipelineRunsTotal   *prometheus.CounterVec
	PipelineDuration    *prometheus.HistogramVec
	ExperimentsRanked   prometheus.Counter
	GroupRowsComputed   prometheus.Counter
	DepthPointsComputed prometheus.Counter
	ReportsGenerated    prometheus.Counter

	// Feasibility metrics
	FeasibleExperiments   prometheus.Gauge
	InfeasibleExperiments prometheus.Gauge
	ThresholdViolations   *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulPipeline prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "disassembly_doe_lab"
	}

	return &Metrics{
		// Calculation metrics
		RecordsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calculation",
			Name:      "records_processed_total",
			Help:      "Total number of component records processed",
		}),
		EvaluationsPerformed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calculation",
			Name:      "evaluations_performed_total",
			Help:      "Total number of formula evaluations performed",
		}),
		RecordsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calculation",
			Name:      "records_skipped_total",
			Help:      "Total number of records skipped in best-effort mode by definition",
		}, []string{"definition"}),
		CalculationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calculation",
			Name:      "errors_total",
			Help:      "Total number of calculation errors by type",
		}, []string{"error_type"}),

		// Pipeline metrics
		PipelineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"phase", "status"}),
		PipelineDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"phase"}),
		ExperimentsRanked: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "experiments_ranked_total",
			Help:      "Total number of experiments ranked",
		}),
		GroupRowsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "group_rows_computed_total",
			Help:      "Total number of group statistics rows computed",
		}),
		DepthPointsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "depth_points_computed_total",
			Help:      "Total number of depth curve points computed",
		}),
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),

		// Feasibility metrics
		FeasibleExperiments: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feasibility",
			Name:      "feasible_experiments",
			Help:      "Number of feasible experiments in the last run",
		}),
		InfeasibleExperiments: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feasibility",
			Name:      "infeasible_experiments",
			Help:      "Number of infeasible experiments in the last run",
		}),
		ThresholdViolations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feasibility",
			Name:      "threshold_violations_total",
			Help:      "Total number of threshold violations by indicator",
		}, []string{"indicator"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"store", "operation"}),

		// Health metrics
		LastSuccessfulPipeline: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pipeline_timestamp",
			Help:      "Unix timestamp of last successful pipeline run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordEvaluations adds to the evaluations performed counter.
func RecordEvaluations(n int) {
	DefaultMetrics.EvaluationsPerformed.Add(float64(n))
}

// RecordSkipped records best-effort skips for a definition.
func RecordSkipped(definitionID string, n int) {
	DefaultMetrics.RecordsSkipped.WithLabelValues(definitionID).Add(float64(n))
}

// RecordCalculationError records a calculation failure by type.
func RecordCalculationError(errorType string) {
	DefaultMetrics.CalculationErrors.WithLabelValues(errorType).Inc()
}

// RecordPipelineRun records a pipeline phase run.
func RecordPipelineRun(phase, status string, durationSeconds float64) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(phase, status).Inc()
	DefaultMetrics.PipelineDuration.WithLabelValues(phase).Observe(durationSeconds)
}

// UpdateFeasibility updates the feasibility gauges.
func UpdateFeasibility(feasible, infeasible int) {
	DefaultMetrics.FeasibleExperiments.Set(float64(feasible))
	DefaultMetrics.InfeasibleExperiments.Set(float64(infeasible))
}

// RecordViolations records threshold violations for an indicator.
func RecordViolations(indicatorID string, n int) {
	DefaultMetrics.ThresholdViolations.WithLabelValues(indicatorID).Add(float64(n))
}

// RecordReportGenerated increments the reports generated counter.
func RecordReportGenerated() {
	DefaultMetrics.ReportsGenerated.Inc()
}

// RecordDBQuery records database query metrics for a store operation.
func RecordDBQuery(store, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(store, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(store, operation).Inc()
	}
}
