package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================================
// HTTP 指标
// ============================================================================

var (
	// APIRequestsTotal HTTP 请求总数
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP 请求总数（按方法、路径、状态码）",
		},
		[]string{"method", "path", "status"},
	)

	// APIRequestDuration HTTP 请求耗时
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP 请求耗时分布",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// ============================================================================
// 业务指标
// ============================================================================

var (
	// PromptsCreatedTotal 提示词创建总数
	PromptsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prompts_created_total",
			Help: "提示词创建总数",
		},
	)

	// VersionsCreatedTotal 版本创建总数
	VersionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prompt_versions_created_total",
			Help: "提示词版本创建总数",
		},
	)

	// EvaluationsTotal 评估执行总数
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompt_evaluations_total",
			Help: "提示词评估执行总数（按结果）",
		},
		[]string{"result"},
	)

	// EvaluationScore 评估综合得分分布
	EvaluationScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prompt_evaluation_final_score",
			Help:    "评估综合得分分布",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
)

// RecordEvaluation 记录一次评估结果
func RecordEvaluation(finalScore float64, err error) {
	if err != nil {
		EvaluationsTotal.WithLabelValues("error").Inc()
		return
	}
	EvaluationsTotal.WithLabelValues("ok").Inc()
	EvaluationScore.Observe(finalScore)
}
