package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API 指标
var (
	// APIRequestsTotal API 请求总数
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentdesk_api_requests_total",
			Help: "API 请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// APIRequestDuration API 请求延迟（秒）
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentdesk_api_request_duration_seconds",
			Help:    "API 请求延迟分布",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// APIRequestSize API 请求体大小（字节）
	APIRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentdesk_api_request_size_bytes",
			Help:    "API 请求体大小分布",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)

	// APIResponseSize API 响应体大小（字节）
	APIResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentdesk_api_response_size_bytes",
			Help:    "API 响应体大小分布",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)
)

// AI 调用指标
var (
	// AICallsTotal AI 调用总数
	AICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentdesk_ai_calls_total",
			Help: "AI 调用总数",
		},
		[]string{"mode", "status"}, // mode: stream, plain; status: 成功为 ok，失败为错误类型
	)

	// AICallDuration AI 调用耗时（秒），包含重试与续写
	AICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentdesk_ai_call_duration_seconds",
			Help:    "AI 调用耗时分布",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"mode"},
	)

	// AIAttempts 每次 AI 调用实际发起的尝试次数
	AIAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agentdesk_ai_attempts",
			Help:    "每次 AI 调用的尝试次数",
			Buckets: []float64{1, 2, 3},
		},
	)

	// AITokensTotal 估算的 Token 数
	AITokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentdesk_ai_tokens_estimated_total",
			Help: "估算的 AI Token 数",
		},
		[]string{"type"}, // prompt, completion
	)
)

// 业务指标
var (
	// MessagesTotal 写入的消息数
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentdesk_messages_total",
			Help: "写入的消息数",
		},
		[]string{"role", "agent"},
	)

	// RegenerateTasksTotal 重新生成任务数
	RegenerateTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentdesk_regenerate_tasks_total",
			Help: "重新生成消息任务数",
		},
		[]string{"mode", "status"}, // mode: queued, inline, worker
	)

	// OperationLogsTotal 操作日志写入数
	OperationLogsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentdesk_operation_logs_total",
			Help: "操作日志写入数",
		},
		[]string{"status"},
	)

	// OperationLogsPruned 清理掉的操作日志数
	OperationLogsPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agentdesk_operation_logs_pruned_total",
			Help: "按保留期清理的操作日志数",
		},
	)
)

// 缓存指标
var (
	// CacheHits 缓存命中数
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentdesk_cache_hits_total",
			Help: "缓存命中总数",
		},
		[]string{"cache_type"},
	)

	// CacheMisses 缓存未命中数
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentdesk_cache_misses_total",
			Help: "缓存未命中总数",
		},
		[]string{"cache_type"},
	)
)

// 系统指标
var (
	// BuildInfo 构建信息
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "agentdesk_build_info",
			Help: "AgentDesk 构建信息",
		},
		[]string{"version", "go_version", "commit"},
	)

	// DBConnections 数据库连接池状态
	DBConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "agentdesk_db_connections",
			Help: "数据库连接池状态",
		},
		[]string{"state"}, // open, in_use, idle
	)
)

// RecordBuildInfo 记录构建信息
func RecordBuildInfo(version, goVersion, commit string) {
	BuildInfo.WithLabelValues(version, goVersion, commit).Set(1)
}

// ObserveAICall 记录一次 AI 调用
func ObserveAICall(mode, status string, duration time.Duration, attempts int) {
	AICallsTotal.WithLabelValues(mode, status).Inc()
	AICallDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if attempts > 0 {
		AIAttempts.Observe(float64(attempts))
	}
}

// AddAITokens 累加估算的 Token 数
func AddAITokens(promptTokens, completionTokens int) {
	if promptTokens > 0 {
		AITokensTotal.WithLabelValues("prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		AITokensTotal.WithLabelValues("completion").Add(float64(completionTokens))
	}
}
