// HTTP middleware applying per-client rate limits by request method.

package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/wikidproject/wikid/internal/server/dto"
)

// Config holds the limiters for the two request classes the wiki store
// distinguishes: reads (GET) and writes (POST/PUT). A nil limiter disables
// limiting for that class.
type Config struct {
	Read  *Limiter
	Write *Limiter
}

// NewConfig builds limiters from requests-per-minute settings. Zero
// disables the corresponding class.
func NewConfig(readPerMin, writePerMin, burst int) *Config {
	c := &Config{}
	if readPerMin > 0 {
		c.Read = NewLimiter(readPerMin, time.Minute, burst)
	}
	if writePerMin > 0 {
		c.Write = NewLimiter(writePerMin, time.Minute, burst)
	}
	return c
}

// Close stops all limiters.
func (c *Config) Close() {
	if c.Read != nil {
		c.Read.Close()
	}
	if c.Write != nil {
		c.Write.Close()
	}
}

// match returns the limiter for a request method, or nil when the class is
// unlimited.
func (c *Config) match(method string) *Limiter {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return c.Write
	default:
		return c.Read
	}
}

// Middleware enforces the config per client IP. Limited requests receive
// 429 with Retry-After; all responses carry X-RateLimit-* headers.
func Middleware(c *Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := c.match(r.Method)
			if l == nil {
				next.ServeHTTP(w, r)
				return
			}
			result := l.Allow(clientIP(r))
			writeHeaders(w, result)
			if !result.Allowed {
				apiErr := dto.RateLimited()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(apiErr.StatusCode())
				_ = json.NewEncoder(w).Encode(&dto.ErrorResponse{
					Error: dto.ErrorDetails{Code: apiErr.Code(), Message: apiErr.Error()},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeHeaders writes rate limit headers to the response.
func writeHeaders(w http.ResponseWriter, result Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if !result.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
	}
}

// clientIP extracts the client address without the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
