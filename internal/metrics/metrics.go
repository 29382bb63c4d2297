// Package metrics provides Prometheus metrics for planning runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlansTotal counts finished planning runs.
	// Labels: strategy (sequential, parallel), result (complete, partial, error)
	PlansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rollcut",
			Subsystem: "planner",
			Name:      "plans_total",
			Help:      "Total number of planning runs by strategy and outcome",
		},
		[]string{"strategy", "result"},
	)

	// PlanDuration tracks wall time of a whole planning run.
	PlanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rollcut",
			Subsystem: "planner",
			Name:      "plan_duration_seconds",
			Help:      "Duration of planning runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
		},
		[]string{"strategy"},
	)

	// ChunksTotal counts searched chunks.
	// Labels: feasible (true, false)
	ChunksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rollcut",
			Subsystem: "planner",
			Name:      "chunks_total",
			Help:      "Total number of chunks searched",
		},
		[]string{"feasible"},
	)

	// SearchCallsTotal counts recursive search calls across all chunks.
	SearchCallsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rollcut",
			Subsystem: "planner",
			Name:      "search_calls_total",
			Help:      "Total number of recursive search calls",
		},
	)

	// TaskFaultsTotal counts pool tasks that panicked.
	TaskFaultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rollcut",
			Subsystem: "planner",
			Name:      "task_faults_total",
			Help:      "Total number of search tasks that failed and were treated as absent",
		},
	)

	// OrdersTotal counts orders by outcome.
	// Labels: outcome (placed, unplaced)
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rollcut",
			Subsystem: "planner",
			Name:      "orders_total",
			Help:      "Total number of orders processed by outcome",
		},
		[]string{"outcome"},
	)

	// LastUtilization is the utilization of the most recent plan in percent.
	LastUtilization = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rollcut",
			Subsystem: "planner",
			Name:      "last_utilization_percent",
			Help:      "Utilization of the most recent plan in percent",
		},
	)
)

// RecordChunk records one searched chunk.
func RecordChunk(feasible bool, calls int64, faults int64) {
	label := "false"
	if feasible {
		label = "true"
	}
	ChunksTotal.WithLabelValues(label).Inc()
	SearchCallsTotal.Add(float64(calls))
	if faults > 0 {
		TaskFaultsTotal.Add(float64(faults))
	}
}

// RecordPlan records a finished planning run.
func RecordPlan(strategy, result string, placed, unplaced int, utilization float64, elapsed time.Duration) {
	PlansTotal.WithLabelValues(strategy, result).Inc()
	PlanDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	OrdersTotal.WithLabelValues("placed").Add(float64(placed))
	OrdersTotal.WithLabelValues("unplaced").Add(float64(unplaced))
	LastUtilization.Set(utilization)
}
