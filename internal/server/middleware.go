package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

// requireAuth protects scan-launching endpoints with bearer authentication.
// When no secret key is configured the API is open and the middleware
// passes requests through unchanged.
//
// Token comparison uses subtle.ConstantTimeCompare so response timing
// does not depend on how much of the secret matched.
func requireAuth(secretKey string, next http.Handler) http.Handler {
	if secretKey == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secretKey)) != 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"missing or invalid bearer token"}` + "\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimit bounds how fast scans can be launched.
// A single global limiter is enough here: the expensive resource is the
// scan pipeline itself, not per-client fairness.
func rateLimit(limiter *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"too many scan requests"}` + "\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
