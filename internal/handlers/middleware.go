package handlers

import (
	"log"
	"net/http"
	"time"

	"clozereader/internal/security"
)

// Logging middleware logs HTTP requests.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// RateLimit middleware rejects clients that exceed the per-IP request
// budget. Hint and game requests fan out to paid upstream services, so the
// limit sits in front of every API route.
func RateLimit(limiter *security.RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(security.GetClientIP(r)) {
				respondWithError(w, http.StatusTooManyRequests, "Too many requests", "", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
