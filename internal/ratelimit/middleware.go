package ratelimit

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type limitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"`
}

// ClientIdentifier derives the limiter key from the forwarded client
// address (first X-Forwarded-For entry if present, else the socket
// address) plus the route path, so different routes from the same client
// do not share a budget.
func ClientIdentifier(r *http.Request) string {
	addr := ""
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		addr = strings.TrimSpace(strings.Split(fwd, ",")[0])
	} else {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			addr = r.RemoteAddr
		} else {
			addr = host
		}
	}
	return addr + ":" + r.URL.Path
}

// Middleware enforces the preset on a handler. Denied requests get a 429
// with rate-limit headers and a retry-after hint in whole seconds.
func (l *Limiter) Middleware(preset Preset, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := l.Check(r.Context(), ClientIdentifier(r), preset)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(preset.MaxRequests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(math.Ceil(time.Until(result.ResetAt).Seconds()))
			if retryAfter < 0 {
				retryAfter = 0
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(limitExceededResponse{
				Error:      "rate_limit_exceeded",
				Message:    "Too many requests, slow down",
				RetryAfter: retryAfter,
			})
			return
		}

		next.ServeHTTP(w, r)
	}
}
