package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware rejects requests once limiter is exhausted with 429 and
// a Retry-After hint. The limiter is shared by all clients.
func RateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			res := limiter.Reserve()
			if !res.OK() {
				writeTooManyRequests(w, 1)
				return
			}
			if delay := res.Delay(); delay > 0 {
				res.Cancel()
				AddLogField(r.Context(), "rate_limited", "true")
				writeTooManyRequests(w, int(math.Ceil(delay.Seconds())))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeTooManyRequests(w http.ResponseWriter, retryAfter int) {
	w.Header().Set("Retry-After", strconv.Itoa(max(retryAfter, 1)))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(map[string]string{"response": "Too many requests, please retry later."})
}
