// HTTP middleware: request logging, body caps and the chain assembly.

package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/wikidproject/wikid/internal/server/dto"
	"github.com/wikidproject/wikid/internal/server/ratelimit"
	"github.com/wikidproject/wikid/internal/wiki"
)

// Handler assembles the full middleware chain around a Server: request
// logging outermost, then panic recovery, rate limiting and the request
// body cap.
func Handler(webs *wiki.Collection, cfg Config, version string) http.Handler {
	s := New(webs, version)
	rl := ratelimit.NewConfig(cfg.RateLimits.ReadRatePerMin, cfg.RateLimits.WriteRatePerMin, cfg.RateLimits.Burst)
	var h http.Handler = s
	h = maxBodyBytes(cfg.MaxRequestBodyBytes)(h)
	h = ratelimit.Middleware(rl)(h)
	h = recoverPanics(h)
	h = requestLogger(h)
	return h
}

// recoverPanics converts a handler panic into a 500 response so one bad
// request cannot take the process down.
func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				slog.ErrorContext(r.Context(), "Panic in handler", "panic", v)
				writeError(w, r, dto.Internal("internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	return rec.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter for middleware that needs it.
func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// requestLogger logs one line per request with a generated request ID.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(rec, r)
		slog.InfoContext(r.Context(), "Request",
			"id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"ip", r.RemoteAddr,
		)
	})
}

// maxBodyBytes caps request body size. Zero disables the cap.
func maxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
