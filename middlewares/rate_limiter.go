package middlewares

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-ops/utils"
	"golang.org/x/time/rate"
)

const visitorTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	message string

	visitors  map[string]*visitor
	lastSweep time.Time
	mu        sync.Mutex
}

func NewRateLimiter(requestsPerSecond, burst int) *RateLimiter {
	return &RateLimiter{
		limit:     rate.Limit(requestsPerSecond),
		burst:     burst,
		message:   "Too many requests, please try again later",
		visitors:  make(map[string]*visitor),
		lastSweep: time.Now(),
	}
}

// NewLoginRateLimiter is stricter, meant for endpoints that check
// credentials.
func NewLoginRateLimiter(perMinute, burst int) *RateLimiter {
	rl := NewRateLimiter(1, burst)
	rl.limit = rate.Every(time.Minute / time.Duration(perMinute))
	rl.message = "Too many login attempts, please wait a moment"
	return rl
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			utils.RespondError(c, http.StatusTooManyRequests, errors.New(rl.message))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > visitorTTL {
		for key, v := range rl.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(rl.visitors, key)
			}
		}
		rl.lastSweep = now
	}

	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.Allow()
}
