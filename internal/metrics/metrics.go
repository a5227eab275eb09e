// Package metrics holds the process-wide prometheus instruments for the user
// task subsystem. Scraped via the server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveTasks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "user_tasks_active",
		Help: "Number of in-flight user tasks.",
	})

	StartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "user_tasks_started_total",
		Help: "Total number of user tasks started.",
	})

	CompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "user_tasks_completed_total",
		Help: "Total number of user tasks completed.",
	})

	RenderSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "user_task_render_seconds",
		Help:    "Time spent rendering user task state views.",
		Buckets: prometheus.DefBuckets,
	}, []string{"format"})
)
