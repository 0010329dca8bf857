package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic,
// the day-view cache, database writes and schedule generation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	dbQueryDuration *prometheus.HistogramVec

	planDuration     prometheus.Histogram
	plansTotal       *prometheus.CounterVec
	tasksPlaced      *prometheus.CounterVec
	tasksUnscheduled prometheus.Counter
	eventsSkipped    prometheus.Counter
	persistJobs      *prometheus.CounterVec
	exportsTotal     *prometheus.CounterVec
}

// NewMetricsService registers collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache reads",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache writes",
			Buckets: prometheus.DefBuckets,
		}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		planDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "planner_generation_duration_seconds",
			Help:    "Time spent placing activities for one request",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		plansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_plans_total",
			Help: "Generated plans by persistence mode",
		}, []string{"persist_mode"}),
		tasksPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_tasks_placed_total",
			Help: "Placed tasks by the tier that found room",
		}, []string{"tier"}),
		tasksUnscheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_tasks_unscheduled_total",
			Help: "Tasks that exhausted every placement tier",
		}),
		eventsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_events_skipped_total",
			Help: "Events that could not fit inside their day",
		}),
		persistJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_persist_jobs_total",
			Help: "Background timetable writes by outcome",
		}, []string{"result"}),
		exportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_exports_total",
			Help: "Rendered timetable exports by format",
		}, []string{"format"}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal, m.cacheLookups, m.cacheLatency, m.cacheWrite, m.dbQueryDuration,
		m.planDuration, m.plansTotal, m.tasksPlaced, m.tasksUnscheduled, m.eventsSkipped, m.persistJobs,
		m.exportsTotal, goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup outcome.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database operation timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// PlanOutcome summarises one generation run for metrics.
type PlanOutcome struct {
	Duration      time.Duration
	PersistMode   string
	PlacedByTier  map[string]int
	Unscheduled   int
	SkippedEvents int
}

// RecordPlan records a generation run.
func (m *MetricsService) RecordPlan(outcome PlanOutcome) {
	if m == nil {
		return
	}
	m.planDuration.Observe(outcome.Duration.Seconds())
	m.plansTotal.WithLabelValues(outcome.PersistMode).Inc()
	for tier, n := range outcome.PlacedByTier {
		m.tasksPlaced.WithLabelValues(tier).Add(float64(n))
	}
	m.tasksUnscheduled.Add(float64(outcome.Unscheduled))
	m.eventsSkipped.Add(float64(outcome.SkippedEvents))
}

// RecordPersistJob records the final outcome of a background write.
func (m *MetricsService) RecordPersistJob(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.persistJobs.WithLabelValues(result).Inc()
}

// RecordExport counts a rendered export.
func (m *MetricsService) RecordExport(format string) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(format).Inc()
}
