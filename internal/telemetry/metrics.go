package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// MetricsRegistry holds every Prometheus metric the orchestrator and
// HTTP API emit, the forensic-engine counterpart of the teacher's
// interfaces/http.MetricsRegistry.
type MetricsRegistry struct {
	StageDuration   *prometheus.HistogramVec
	StagesTotal     *prometheus.CounterVec
	StageErrors     *prometheus.CounterVec
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	ActiveJobs      prometheus.Gauge
	JobsTotal       *prometheus.CounterVec
	QueueDepth      prometheus.Gauge
	CircuitOpenTotal prometheus.Counter
}

// NewMetricsRegistry constructs and registers all metrics against the
// default Prometheus registerer.
func NewMetricsRegistry() *MetricsRegistry {
	m := &MetricsRegistry{
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "iris_stage_duration_seconds",
				Help:    "Duration of each job stage in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"stage", "result"},
		),
		StagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iris_stages_total",
				Help: "Total number of job stages executed",
			},
			[]string{"stage", "result"},
		),
		StageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iris_stage_errors_total",
				Help: "Total number of stage errors by kind",
			},
			[]string{"stage", "error_kind"},
		),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "iris_cache_hits_total",
			Help: "Total number of job result cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "iris_cache_misses_total",
			Help: "Total number of job result cache misses",
		}),
		ActiveJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "iris_active_jobs",
			Help: "Number of jobs currently RUNNING",
		}),
		JobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iris_jobs_total",
				Help: "Total number of jobs by terminal status",
			},
			[]string{"status"},
		),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "iris_queue_depth",
			Help: "Number of jobs waiting in the priority queue",
		}),
		CircuitOpenTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "iris_ingest_circuit_open_total",
			Help: "Total number of times the ingest circuit breaker opened",
		}),
	}

	prometheus.MustRegister(
		m.StageDuration, m.StagesTotal, m.StageErrors,
		m.CacheHits, m.CacheMisses,
		m.ActiveJobs, m.JobsTotal, m.QueueDepth, m.CircuitOpenTotal,
	)

	log.Info().Msg("telemetry registry initialized")
	return m
}

// StageTimer times one in-flight stage execution.
type StageTimer struct {
	registry *MetricsRegistry
	stage    string
	start    time.Time
}

// StartStageTimer begins timing a stage.
func (m *MetricsRegistry) StartStageTimer(stage string) *StageTimer {
	return &StageTimer{registry: m, stage: stage, start: time.Now()}
}

// Stop records the stage duration and outcome counters.
func (t *StageTimer) Stop(result string) {
	duration := time.Since(t.start)
	t.registry.StageDuration.WithLabelValues(t.stage, result).Observe(duration.Seconds())
	t.registry.StagesTotal.WithLabelValues(t.stage, result).Inc()
}

// RecordStageError increments the stage error counter for errKind.
func (m *MetricsRegistry) RecordStageError(stage, errKind string) {
	m.StageErrors.WithLabelValues(stage, errKind).Inc()
}

// RecordJobTerminal increments the terminal-status counter.
func (m *MetricsRegistry) RecordJobTerminal(status string) {
	m.JobsTotal.WithLabelValues(status).Inc()
}

// Handler exposes the /metrics scrape endpoint.
func (m *MetricsRegistry) Handler() http.Handler {
	return promhttp.Handler()
}
