// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuestionsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nl2sql_questions_processed_total",
			Help: "Total number of questions answered, by generation method",
		},
		[]string{"method"},
	)

	QuestionsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nl2sql_questions_failed_total",
			Help: "Total number of questions that ended in an error, by error code",
		},
		[]string{"error_code"},
	)

	QuestionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "nl2sql_question_duration_seconds",
			Help: "End-to-end duration of question handling in seconds",
		},
		[]string{"method"},
	)

	SQLExecutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "nl2sql_sql_execution_duration_seconds",
			Help: "Duration of SQL statement execution in seconds",
		},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "nl2sql_generation_duration_seconds",
			Help: "Duration of model completion calls in seconds",
		},
	)
)
