package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wikidproject/wikid/internal/server/dto"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_Disabled(t *testing.T) {
	c := NewConfig(0, 0, 0)
	defer c.Close()
	h := Middleware(c)(okHandler())

	for i := 0; i < 100; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webs", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 with limits disabled", w.Code)
		}
	}
}

func TestMiddleware_WriteLimit(t *testing.T) {
	c := NewConfig(6000, 60, 2)
	defer c.Close()
	h := Middleware(c)(okHandler())

	statuses := []int{}
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webs", nil))
		statuses = append(statuses, w.Code)
	}
	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Fatalf("burst requests rejected: %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 past the burst", statuses[2])
	}

	// Reads use a separate limiter and still pass.
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webs", nil))
	if w.Code != http.StatusOK {
		t.Errorf("read status = %d, want 200", w.Code)
	}
}

func TestMiddleware_Headers(t *testing.T) {
	c := NewConfig(6000, 60, 1)
	defer c.Close()
	h := Middleware(c)(okHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webs", nil))
	if w.Header().Get("X-RateLimit-Limit") != "60" {
		t.Errorf("X-RateLimit-Limit = %q, want 60", w.Header().Get("X-RateLimit-Limit"))
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webs", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After on a limited response")
	}
	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body %q: %v", w.Body.String(), err)
	}
	if resp.Error.Code != dto.ErrorCodeRateLimited {
		t.Errorf("code = %s, want RATE_LIMITED", resp.Error.Code)
	}
}
