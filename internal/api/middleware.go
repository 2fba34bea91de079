package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"helpdesk-ai/backend/internal/ratelimit"
)

// anonymousKey is the shared bucket for requests with neither a session id
// nor a resolvable client address.
const anonymousKey = "anonymous"

// RateLimitMiddleware gates the reply-generation path with the fixed-window
// limiter. The limit key is the request body's sessionId when present,
// falling back to the client address, then to a shared anonymous bucket.
//
// The body is read to peek at the sessionId, then restored so the handler
// can decode it again.
func RateLimitMiddleware(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limitKey(r)

			if limiter.Check(key) {
				retryAfter := 1
				if resetAt, ok := limiter.ResetAt(key); ok {
					if secs := int(time.Until(resetAt).Seconds()) + 1; secs > retryAfter {
						retryAfter = secs
					}
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				respondWithJSON(w, http.StatusTooManyRequests, ErrorResponse{
					Error:      "Too many requests. Please slow down and try again.",
					ErrorCode:  CodeRateLimit,
					RetryAfter: retryAfter,
				})
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
			next.ServeHTTP(w, r)
		})
	}
}

// limitKey extracts the throttle key for a request without consuming its body.
func limitKey(r *http.Request) string {
	if r.Body != nil {
		body, err := io.ReadAll(r.Body)
		if err == nil {
			r.Body = io.NopCloser(bytes.NewReader(body))
			var peek struct {
				SessionID string `json:"sessionId"`
			}
			if jsonErr := json.Unmarshal(body, &peek); jsonErr == nil && peek.SessionID != "" {
				return peek.SessionID
			}
		}
	}

	// chi's RealIP middleware has already rewritten RemoteAddr when the
	// request came through a proxy.
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return anonymousKey
}
