package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/ddhiman-alt/nearpaws/internal/config"
)

const (
	clientIdleTimeout = 30 * time.Minute
	cleanupInterval   = 10 * time.Minute
)

// clientLimiter is the token bucket of one client.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterMiddleware keeps a token bucket per client IP.
type RateLimiterMiddleware struct {
	clients    map[string]*clientLimiter
	mu         sync.Mutex
	refillRate rate.Limit
	bucketSize int
	logger     *slog.Logger
	now        func() time.Time
}

// NewRateLimiterMiddleware creates a limiter from the configured bucket.
// Entries idle for longer than clientIdleTimeout are dropped by Run.
func NewRateLimiterMiddleware(cfg *config.Config, logger *slog.Logger) *RateLimiterMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &RateLimiterMiddleware{
		clients:    make(map[string]*clientLimiter),
		refillRate: rate.Limit(cfg.RateLimitRefillRate),
		bucketSize: cfg.RateLimitBucketSize,
		logger:     logger,
		now:        time.Now,
	}
}

func (rm *RateLimiterMiddleware) getClientLimiter(identifier string) *clientLimiter {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	cl, exists := rm.clients[identifier]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(rm.refillRate, rm.bucketSize)}
		rm.clients[identifier] = cl
	}
	cl.lastSeen = rm.now()
	return cl
}

// cleanup removes clients not seen since the idle timeout and returns how many.
func (rm *RateLimiterMiddleware) cleanup() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	removed := 0
	for id, cl := range rm.clients {
		if rm.now().Sub(cl.lastSeen) > clientIdleTimeout {
			delete(rm.clients, id)
			removed++
		}
	}
	return removed
}

// Run prunes idle clients until ctx is done.
func (rm *RateLimiterMiddleware) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rm.cleanup(); n > 0 {
				rm.logger.Debug("rate limiter cleanup", "removed", n)
			}
		}
	}
}

// Limit creates the Gin middleware handler.
func (rm *RateLimiterMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := c.ClientIP()
		if !rm.getClientLimiter(clientKey).limiter.Allow() {
			LoggerFrom(c).WarnContext(c.Request.Context(), "rate limit exceeded", "client", clientKey, "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "message": "Too many requests, please try again later"})
			return
		}
		c.Next()
	}
}
