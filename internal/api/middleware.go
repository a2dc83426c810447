package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"portfolio_tracker/internal/config"
	"portfolio_tracker/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ZapLoggerMiddleware logs every request with method, path, status and
// latency, and feeds the request counter.
func ZapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("HTTP")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()

		log.Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("clientIP", c.ClientIP()))
	}
}

// RateLimitMiddleware applies a token-bucket limit per client IP. Stale
// limiters are dropped after an hour of inactivity.
func RateLimitMiddleware(cfg config.RateLimitConfig) gin.HandlerFunc {
	type clientLimiter struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var mu sync.Mutex
	clients := make(map[string]*clientLimiter)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		cl, exists := clients[ip]
		if !exists {
			cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)}
			clients[ip] = cl
		}
		cl.lastSeen = time.Now()
		if len(clients) > 1000 {
			cutoff := time.Now().Add(-time.Hour)
			for k, v := range clients {
				if v.lastSeen.Before(cutoff) {
					delete(clients, k)
				}
			}
		}
		mu.Unlock()

		if !cl.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
