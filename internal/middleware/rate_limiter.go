package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiterConfig 令牌桶配置
type RateLimiterConfig struct {
	PerMinute int           // 每分钟补充的令牌数
	Burst     int           // 桶容量
	IdleTTL   time.Duration // 空闲多久后丢弃状态
}

// DefaultLoginLimiterConfig 登录与重置密码接口的默认限流
func DefaultLoginLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{PerMinute: 10, Burst: 5, IdleTTL: 10 * time.Minute}
}

type bucket struct {
	tokens     float64
	lastUpdate time.Time
}

// RateLimiter 按 key 的内存令牌桶，单实例部署足够，多实例时各自计数
type RateLimiter struct {
	cfg       RateLimiterConfig
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter 创建限流器
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{cfg: cfg, buckets: make(map[string]*bucket), now: time.Now}
}

// Allow 消耗一个令牌，桶空时返回 false
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	b, ok := rl.buckets[key]
	if !ok {
		rl.buckets[key] = &bucket{tokens: float64(rl.cfg.Burst - 1), lastUpdate: now}
		return true
	}

	elapsed := now.Sub(b.lastUpdate).Minutes()
	b.tokens += elapsed * float64(rl.cfg.PerMinute)
	if b.tokens > float64(rl.cfg.Burst) {
		b.tokens = float64(rl.cfg.Burst)
	}
	b.lastUpdate = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep 惰性清理空闲状态，调用方持有锁
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.cfg.IdleTTL {
		return
	}
	for key, b := range rl.buckets {
		if now.Sub(b.lastUpdate) > rl.cfg.IdleTTL {
			delete(rl.buckets, key)
		}
	}
	rl.lastSweep = now
}

// RateLimitByIP 按客户端 IP 和路由限流
func RateLimitByIP(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.FullPath() + ":" + c.ClientIP()
		if !limiter.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "请求过于频繁，请稍后重试",
			})
			return
		}
		c.Next()
	}
}
