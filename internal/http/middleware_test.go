package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestLoggerAttachesContextLogger(t *testing.T) {
	t.Parallel()

	base := slog.New(slog.NewTextHandler(io.Discard, nil))
	var sawLogger bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = LoggerFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusOK)
	})

	handler := RequestLogger(base)(inner)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	if !sawLogger {
		t.Fatal("expected a logger on the request context")
	}
}

func TestRateLimiterThrottles(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(1, 1)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := limiter.Limit(inner)

	request := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/abc12", nil)
	request.RemoteAddr = "10.0.0.1:5000"

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, request)
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, request)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", second.Code)
	}

	// A different client keeps its own bucket.
	other := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/abc12", nil)
	other.RemoteAddr = "10.0.0.2:5000"
	third := httptest.NewRecorder()
	handler.ServeHTTP(third, other)
	if third.Code != http.StatusOK {
		t.Fatalf("other client status = %d", third.Code)
	}
}

func TestRateLimiterUsesConfiguredDefaults(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(0, 0)
	if limiter.limit <= 0 || limiter.burst <= 0 {
		t.Fatalf("expected positive defaults, got limit=%v burst=%d", limiter.limit, limiter.burst)
	}
}
