package middlewares

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeremiapane/pc-cafe/metrics"
	"github.com/yeremiapane/pc-cafe/utils"
)

// RateLimiter is a per-IP sliding window: at most rate requests per interval.
type RateLimiter struct {
	rate      int
	interval  time.Duration
	ips       map[string][]time.Time
	lastSweep time.Time
	mu        sync.Mutex
}

func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		rate:     rate,
		interval: interval,
		ips:      make(map[string][]time.Time),
	}
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP(), time.Now()) {
			metrics.APIRateLimitHits.WithLabelValues("api").Inc()
			utils.AbortWithAppError(c, errTooManyRequests)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.interval)
	if now.Sub(rl.lastSweep) > rl.interval {
		rl.sweep(cutoff)
		rl.lastSweep = now
	}

	valid := rl.ips[ip][:0]
	for _, t := range rl.ips[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.rate {
		rl.ips[ip] = valid
		return false
	}
	rl.ips[ip] = append(valid, now)
	return true
}

// sweep drops clients with no request after cutoff.
func (rl *RateLimiter) sweep(cutoff time.Time) {
	for ip, times := range rl.ips {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(rl.ips, ip)
		}
	}
}

// Clients reports how many addresses are being tracked.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.ips)
}

// StrictRateLimiter is a token bucket per IP for login and register.
type StrictRateLimiter struct {
	limit    rate.Limit
	burst    int
	mu       sync.Mutex
	limiters map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const visitorIdle = 10 * time.Minute

// NewStrictRateLimiter allows perMinute attempts per IP per minute.
func NewStrictRateLimiter(perMinute int) *StrictRateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &StrictRateLimiter{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		limiters: make(map[string]*visitor),
	}
}

func (s *StrictRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.get(c.ClientIP()).Allow() {
			metrics.APIRateLimitHits.WithLabelValues("auth").Inc()
			utils.AbortWithAppError(c, errTooManyAttempts)
			return
		}
		c.Next()
	}
}

func (s *StrictRateLimiter) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, v := range s.limiters {
		if now.Sub(v.lastSeen) > visitorIdle {
			delete(s.limiters, key)
		}
	}

	v, ok := s.limiters[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

var (
	errTooManyRequests = utils.TooManyRequests("too many requests")
	errTooManyAttempts = utils.TooManyRequests("too many attempts, please wait a moment")
)
