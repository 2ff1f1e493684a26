package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	rate     rate.Limit
	burst    int
	lastGC   time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(r rate.Limit, burst int) *ipLimiter {
	return &ipLimiter{
		limiters: make(map[string]*visitor),
		rate:     r,
		burst:    burst,
		lastGC:   time.Now(),
	}
}

func (ipl *ipLimiter) get(ip string, now time.Time) *rate.Limiter {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	if now.Sub(ipl.lastGC) > limiterIdleTTL {
		for key, v := range ipl.limiters {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(ipl.limiters, key)
			}
		}
		ipl.lastGC = now
	}

	v, ok := ipl.limiters[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(ipl.rate, ipl.burst)}
		ipl.limiters[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// RateLimit allows perMinute requests per client IP, with bursts of the
// same size.
func RateLimit(perMinute int) gin.HandlerFunc {
	il := newIPLimiter(rate.Limit(float64(perMinute)/60), perMinute)
	return func(c *gin.Context) {
		if !il.get(c.ClientIP(), time.Now()).Allow() {
			c.Header("Retry-After", "60")
			abort(c, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		c.Next()
	}
}
