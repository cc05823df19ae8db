package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type countingPruner struct {
	enabled bool
	calls   atomic.Int32
	err     error
}

func (p *countingPruner) Enabled() bool { return p.enabled }

func (p *countingPruner) Prune(context.Context) (int64, error) {
	p.calls.Add(1)
	return 3, p.err
}

func TestNormalizeCron(t *testing.T) {
	assert.Equal(t, "0 0 3 * * *", normalizeCron("0 3 * * *"))
	assert.Equal(t, "*/5 * * * * *", normalizeCron("*/5 * * * * *"))
}

func TestSchedulerSkipsWhenDisabled(t *testing.T) {
	p := &countingPruner{}
	s := NewScheduler(p, zaptest.NewLogger(t))
	require.NoError(t, s.Start("not a cron"))
	assert.Empty(t, s.cron.Entries())
	s.Stop()
}

func TestSchedulerRegistersJob(t *testing.T) {
	p := &countingPruner{enabled: true}
	s := NewScheduler(p, zaptest.NewLogger(t))
	require.NoError(t, s.Start("0 3 * * *"))
	defer s.Stop()
	assert.Len(t, s.cron.Entries(), 1)

	s.runPrune()
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestSchedulerInvalidExpression(t *testing.T) {
	s := NewScheduler(&countingPruner{enabled: true}, zaptest.NewLogger(t))
	assert.Error(t, s.Start("every day"))
}

func TestSchedulerPruneErrorIsLogged(t *testing.T) {
	p := &countingPruner{enabled: true, err: errors.New("locked")}
	s := NewScheduler(p, zaptest.NewLogger(t))
	s.runPrune()
	assert.Equal(t, int32(1), p.calls.Load())
}
