package httpserver

import (
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

const maxTrackedCallers = 10000

// callerLimiter keeps one token bucket per caller. Callers are keyed by the
// X-User-Id header, falling back to the remote address.
type callerLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newCallerLimiter(requestsPerSecond float64, burst int) *callerLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &callerLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (l *callerLimiter) allow(key string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxTrackedCallers {
			l.limiters = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}

// LimitWrites throttles the mutating marketplace routes per caller.
// A non-positive rate turns throttling off.
func (s *Server) LimitWrites(requestsPerSecond float64, burst int) {
	if requestsPerSecond <= 0 {
		s.limiter = nil
		return
	}
	s.limiter = newCallerLimiter(requestsPerSecond, burst)
}

func (s *Server) throttled(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next(w, r)
			return
		}
		key := strings.TrimSpace(r.Header.Get(callerHeader))
		if key == "" {
			key = r.RemoteAddr
		}
		if !s.limiter.allow(key) {
			s.logger.Warn("write request throttled",
				"event", "http_rate_limited",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"caller", key,
				"method", r.Method,
				"path", r.URL.Path,
			)
			writeMarketplaceError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next(w, r)
	}
}
