package api

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimit rejects requests with 429 once limiter has no tokens left.
// A nil limiter disables the check.
func RateLimit(route string, limiter *rate.Limiter, logger *zap.Logger, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			rateLimitedTotal.WithLabelValues(route).Inc()
			w.Header().Set("Retry-After", "1")
			writeError(w, logger, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// countRequests records the response code of every request to route.
func countRequests(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}
