package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"mentorportal/internal/httputil"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// maxVisitors bounds the number of tracked limiters.
const maxVisitors = 10000

// RateLimiter applies a token bucket per session, falling back to the client
// address when no session is known. Idle buckets expire.
type RateLimiter struct {
	mu       sync.Mutex
	visitors *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

// NewRateLimiter allows perMinute requests per minute with an equal burst.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		visitors: expirable.NewLRU[string, *rate.Limiter](maxVisitors, nil, 10*time.Minute),
		rate:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.visitors.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
	}
	rl.visitors.Add(key, limiter)
	return limiter
}

// Limit wraps a handler with the limiter.
func (rl *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := httputil.GetSessionID(r)
		if key == "" {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			key = "ip:" + ip
		}

		if !rl.getVisitor(key).Allow() {
			httputil.RespondErrorWithExtras(w, http.StatusTooManyRequests, "too many analysis requests",
				map[string]interface{}{"notice": httputil.ErrorNotice("Too many analysis requests. Try again in a minute.")})
			return
		}

		next(w, r)
	}
}
