package metrics

import (
	"context"
	"database/sql"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StatsSource 连接池统计来源，*sql.DB 满足该接口
type StatsSource interface {
	Stats() sql.DBStats
}

// SystemCollector 定期采集连接池与运行时指标
type SystemCollector struct {
	db       StatsSource
	interval time.Duration
}

// NewSystemCollector 创建系统指标收集器，db 可为 nil
func NewSystemCollector(db StatsSource, interval time.Duration) *SystemCollector {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &SystemCollector{db: db, interval: interval}
}

// Run 阻塞采集直到 ctx 取消
func (c *SystemCollector) Run(ctx context.Context) {
	c.CollectOnce()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CollectOnce()
		}
	}
}

// CollectOnce 采集一次
func (c *SystemCollector) CollectOnce() {
	if c.db != nil {
		stats := c.db.Stats()
		DBConnections.WithLabelValues("open").Set(float64(stats.OpenConnections))
		DBConnections.WithLabelValues("in_use").Set(float64(stats.InUse))
		DBConnections.WithLabelValues("idle").Set(float64(stats.Idle))
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	goMemoryUsage.Set(float64(m.Alloc))
	goMemorySys.Set(float64(m.Sys))
	goGoroutines.Set(float64(runtime.NumGoroutine()))
	goGCCount.Set(float64(m.NumGC))
}

// Go 运行时指标
var (
	goMemoryUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agentdesk_go_memory_usage_bytes",
		Help: "当前 Go 堆内存使用量",
	})

	goMemorySys = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agentdesk_go_memory_sys_bytes",
		Help: "Go 从系统获取的内存",
	})

	goGoroutines = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agentdesk_go_goroutines",
		Help: "当前 Goroutine 数量",
	})

	goGCCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agentdesk_go_gc_count",
		Help: "GC 执行总次数",
	})
)
