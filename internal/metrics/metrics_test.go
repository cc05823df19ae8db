package metrics

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type fakeStats struct{ stats sql.DBStats }

func (f fakeStats) Stats() sql.DBStats { return f.stats }

func TestSystemCollectorRecordsPoolStats(t *testing.T) {
	c := NewSystemCollector(fakeStats{stats: sql.DBStats{OpenConnections: 3, InUse: 2, Idle: 1}}, 0)
	assert.Equal(t, 15*time.Second, c.interval)

	c.CollectOnce()
	assert.Equal(t, float64(3), testutil.ToFloat64(DBConnections.WithLabelValues("open")))
	assert.Equal(t, float64(2), testutil.ToFloat64(DBConnections.WithLabelValues("in_use")))
	assert.Equal(t, float64(1), testutil.ToFloat64(DBConnections.WithLabelValues("idle")))
	assert.Greater(t, testutil.ToFloat64(goGoroutines), float64(0))
}

func TestPrometheusMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(PrometheusMiddleware())
	r.GET("/api/conversations/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/conversations/:id", "204"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/conversations/42", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/conversations/42", "204"))
	assert.Equal(t, float64(0), after)
	assert.Equal(t, before+1, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/conversations/:id", "204")))
}

func TestObserveAICall(t *testing.T) {
	before := testutil.ToFloat64(AICallsTotal.WithLabelValues("plain", "ok"))
	ObserveAICall("plain", "ok", time.Second, 2)
	AddAITokens(10, 0)
	assert.Equal(t, before+1, testutil.ToFloat64(AICallsTotal.WithLabelValues("plain", "ok")))
}
