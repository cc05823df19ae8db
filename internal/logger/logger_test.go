package logger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "req-1")
	assert.Equal(t, "req-1", GetTraceID(ctx))
	assert.Equal(t, "", GetTraceID(context.Background()))
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New("debug", "json", path)
	require.NoError(t, err)
	l.Info("hello")
	require.NoError(t, l.Sync())

	_, err = New("info", "console", filepath.Join(t.TempDir(), "missing", "x.log"))
	assert.Error(t, err)
}

func TestGetDefaultsToNop(t *testing.T) {
	assert.NotNil(t, Get())
	assert.NotNil(t, WithContext(WithTraceID(context.Background(), "x")))
}
