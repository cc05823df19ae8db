package oplog

import (
	"context"
	"fmt"
	"time"

	"agentdesk/internal/infra"
	"agentdesk/internal/metrics"
)

// Pruner 按保留天数清理过期操作日志
type Pruner struct {
	db            infra.DB
	retentionDays int
	placeholder   string
	now           func() time.Time
}

// NewPruner 创建清理器。driver 为 sqlite 时使用 ? 占位符，其余使用 $1。
func NewPruner(db infra.DB, driver string, retentionDays int) *Pruner {
	placeholder := "$1"
	if driver == "sqlite" {
		placeholder = "?"
	}
	return &Pruner{
		db:            db,
		retentionDays: retentionDays,
		placeholder:   placeholder,
		now:           time.Now,
	}
}

// Enabled 保留天数为 0 时不清理
func (p *Pruner) Enabled() bool {
	return p.retentionDays > 0
}

// Prune 删除 created_at 早于保留期的日志，返回删除行数
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if !p.Enabled() {
		return 0, nil
	}
	cutoff := p.now().UTC().AddDate(0, 0, -p.retentionDays)
	q := "DELETE FROM operation_logs WHERE created_at < " + p.placeholder

	res, err := p.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, fmt.Errorf("oplog: prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("oplog: prune rows affected: %w", err)
	}
	metrics.OperationLogsPruned.Add(float64(n))
	return n, nil
}
