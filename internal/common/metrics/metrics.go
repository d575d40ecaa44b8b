package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_queries_processed_total",
			Help: "Total number of queries processed, by classification",
		},
		[]string{"classification"},
	)

	QueriesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_queries_failed_total",
			Help: "Total number of queries that returned an error payload",
		},
		[]string{"error_code"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "copilot_stage_duration_seconds",
			Help:    "Pipeline stage processing duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	LLMCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_llm_calls_total",
			Help: "Total LLM calls, by stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	ChartsRendered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "copilot_charts_rendered_total",
			Help: "Total charts rendered to disk",
		},
	)
)
