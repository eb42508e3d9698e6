package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecordsCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "corecord_records_created_total",
		Help: "Total number of records created",
	}, []string{"type"})
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "corecord_analyses_total",
		Help: "Total number of analysis generations by result",
	}, []string{"result"})
	AnalysisJobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "corecord_analysis_jobs_total",
		Help: "Total number of analysis jobs processed by final status",
	}, []string{"status"})
	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "corecord_analysis_duration_seconds",
		Help:    "Time spent generating one analysis",
		Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 30, 60},
	})
	HttpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HttpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

func init() {
	prometheus.MustRegister(
		RecordsCreatedTotal,
		AnalysesTotal,
		AnalysisJobsTotal,
		AnalysisDuration,
		HttpRequestsTotal,
		HttpRequestDuration,
	)
}

// ObserveAnalysis records the outcome and latency of one analysis generation.
func ObserveAnalysis(start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	AnalysesTotal.WithLabelValues(result).Inc()
	AnalysisDuration.Observe(time.Since(start).Seconds())
}

// GinMiddleware counts requests per route template and status.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		labels := prometheus.Labels{"method": c.Request.Method, "path": path, "status": status}
		HttpRequestsTotal.With(labels).Inc()
		HttpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}
