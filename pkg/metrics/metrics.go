package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 远端任务存储调用延迟（秒）
	StoreCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_call_duration_seconds",
			Help:    "Remote task store call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"operation", "status"},
	)

	// 熔断器状态：0 closed, 1 open, 2 half-open
	StoreBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_circuit_breaker_state",
			Help: "Circuit breaker state for the remote task store",
		},
	)

	// 视图刷新计数
	ViewRefreshCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_refresh_count",
			Help: "Total number of view refreshes by outcome",
		},
		[]string{"pipeline", "result"}, // result: applied, stale, failed
	)

	// 被跳过的畸形任务记录
	MalformedTaskCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "malformed_task_count",
			Help: "Total number of raw task records skipped during normalization",
		},
		[]string{"pipeline"},
	)

	// 提交计数
	SubmissionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submission_count",
			Help: "Total number of submission commits by outcome",
		},
		[]string{"outcome", "status"},
	)

	// 删除计数
	TaskDeleteCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_delete_count",
			Help: "Total number of task deletes by outcome",
		},
		[]string{"outcome"},
	)

	// Outbox 事件发布计数
	OutboxPublishCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_publish_count",
			Help: "Total number of outbox events published by result",
		},
		[]string{"routing_key", "result"},
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation"},
	)

	// 慢查询计数
	DBSlowQueryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of queries slower than the configured threshold",
		},
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)
)

// RecordStoreCall 记录远端存储调用延迟
func RecordStoreCall(operation, status string, duration time.Duration) {
	StoreCallDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// SetBreakerState 记录熔断器状态
func SetBreakerState(state int) {
	StoreBreakerState.Set(float64(state))
}

// IncrementViewRefresh 增加视图刷新计数
func IncrementViewRefresh(pipeline, result string) {
	ViewRefreshCount.WithLabelValues(pipeline, result).Inc()
}

// AddMalformedTasks 记录被跳过的畸形任务数量
func AddMalformedTasks(pipeline string, n int) {
	if n > 0 {
		MalformedTaskCount.WithLabelValues(pipeline).Add(float64(n))
	}
}

// IncrementSubmission 增加提交计数
func IncrementSubmission(outcome, status string) {
	SubmissionCount.WithLabelValues(outcome, status).Inc()
}

// IncrementTaskDelete 增加删除计数
func IncrementTaskDelete(outcome string) {
	TaskDeleteCount.WithLabelValues(outcome).Inc()
}

// IncrementOutboxPublish 增加 outbox 发布计数
func IncrementOutboxPublish(routingKey, result string) {
	OutboxPublishCount.WithLabelValues(routingKey, result).Inc()
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// IncrementSlowQuery 增加慢查询计数
func IncrementSlowQuery() {
	DBSlowQueryCount.Inc()
}

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
