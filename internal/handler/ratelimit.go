package handler

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/boddenberg/wallet-console-go/internal/infra/cache"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// limiterIdle is how long an idle client's limiter is kept.
const limiterIdle = 10 * time.Minute

// RateLimiter limits requests per client IP. A limiter that has been idle
// for limiterIdle is dropped, which resets that client.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *cache.InMemory[*rate.Limiter]
	rate     rate.Limit
	burst    int
	logger   *zap.Logger
}

// NewRateLimiter allows perMinute requests per minute per IP, in bursts of
// up to perMinute. A non-positive perMinute disables limiting.
func NewRateLimiter(perMinute int, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{burst: perMinute, logger: logger}
	if perMinute > 0 {
		rl.rate = rate.Every(time.Minute / time.Duration(perMinute))
		rl.limiters = cache.New[*rate.Limiter](limiterIdle)
	}
	return rl
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if l, ok := rl.limiters.Get(key); ok {
		rl.limiters.Touch(key)
		return l
	}
	l := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters.Set(key, l)
	return l
}

// Handler returns the rate limiting middleware.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	if rl.limiters == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		if !rl.limiter(key).Allow() {
			rl.logger.Warn("rate limit exceeded",
				zap.String("client", key),
				zap.String("path", r.URL.Path),
			)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Too many attempts, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port RemoteAddr carries unless RealIP rewrote it.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
