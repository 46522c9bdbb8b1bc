package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"hibiki/config"
	"hibiki/utils"
)

// visitor tracks one client's token bucket and when it was last used, so
// idle entries can be dropped.
type visitor struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

const visitorTTL = 5 * time.Minute

var (
	visitorsMu sync.Mutex
	visitors   = map[string]*visitor{}
)

// RateLimitMiddleware throttles requests per client IP with a token bucket.
func RateLimitMiddleware() gin.HandlerFunc {
	cfg := config.Get()
	perMinute := max(cfg.RateLimitPerMinute, 1)
	limit := rate.Every(time.Minute / time.Duration(perMinute))
	burst := max(perMinute/2, 1)

	return func(ctx *gin.Context) {
		if !bucketFor(ctx.ClientIP(), limit, burst).Allow() {
			utils.Error(ctx, http.StatusTooManyRequests, 42901, "rate limit exceeded")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func bucketFor(ip string, limit rate.Limit, burst int) *rate.Limiter {
	visitorsMu.Lock()
	defer visitorsMu.Unlock()

	now := time.Now()
	for key, v := range visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(visitors, key)
		}
	}

	v, ok := visitors[ip]
	if !ok {
		v = &visitor{bucket: rate.NewLimiter(limit, burst)}
		visitors[ip] = v
	}
	v.lastSeen = now
	return v.bucket
}
