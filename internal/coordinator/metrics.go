package coordinator

import "github.com/prometheus/client_golang/prometheus"

var (
	actionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildhook",
			Subsystem: "actions",
			Name:      "total",
			Help:      "Total number of executed actions by category and status",
		},
		[]string{"category", "status"},
	)

	actionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "buildhook",
			Subsystem: "actions",
			Name:      "duration_seconds",
			Help:      "Duration of executed actions in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"category"},
	)

	ignoredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildhook",
			Subsystem: "actions",
			Name:      "ignored_total",
			Help:      "Actions skipped because the host disallowed them",
		},
		[]string{"category"},
	)

	deferredGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "buildhook",
			Subsystem: "actions",
			Name:      "deferred",
			Help:      "Pre actions waiting for their project transition",
		},
	)

	projectNoticesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildhook",
			Subsystem: "projects",
			Name:      "notices_total",
			Help:      "Project transitions observed, by order",
		},
		[]string{"order"},
	)

	logQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "buildhook",
			Subsystem: "logging",
			Name:      "queue_depth",
			Help:      "Log messages waiting for the logging path",
		},
	)
)

func init() {
	prometheus.MustRegister(actionsTotal, actionDuration, ignoredTotal, deferredGauge, projectNoticesTotal, logQueueDepth)
}
