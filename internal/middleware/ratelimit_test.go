package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newLimitedHandler(t testing.TB, limit int) (http.Handler, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	handler := RateLimitMiddleware(redisClient, RateLimitConfig{
		RequestsPerWindow: limit,
		Window:            time.Minute,
		KeyPrefix:         "test",
	}, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	return handler, func() {
		redisClient.Close()
		mr.Close()
	}
}

func TestProperty_RateLimitingBlocksExcessiveRequests(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("requests beyond the window limit receive 429", prop.ForAll(
		func(limit int, excess int) bool {
			handler, teardown := newLimitedHandler(t, limit)
			defer teardown()

			// First `limit` requests from the same client pass
			for i := 0; i < limit; i++ {
				req := httptest.NewRequest(http.MethodGet, "/api/v1/product/", nil)
				req.RemoteAddr = "10.0.0.1:1234"
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, req)

				if w.Code != http.StatusOK {
					t.Logf("FAIL: request %d/%d blocked early with %d", i+1, limit, w.Code)
					return false
				}
			}

			// Every request past the limit is rejected
			for i := 0; i < excess; i++ {
				req := httptest.NewRequest(http.MethodGet, "/api/v1/product/", nil)
				req.RemoteAddr = "10.0.0.1:1234"
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, req)

				if w.Code != http.StatusTooManyRequests {
					t.Logf("FAIL: excess request %d passed with %d", i+1, w.Code)
					return false
				}
				if w.Header().Get("Retry-After") == "" {
					t.Logf("FAIL: 429 without Retry-After header")
					return false
				}
			}

			return true
		},
		gen.IntRange(1, 30),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRateLimit_ClientsAreIsolated(t *testing.T) {
	handler, teardown := newLimitedHandler(t, 1)
	defer teardown()

	first := httptest.NewRequest(http.MethodGet, "/api/v1/product/", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, first)
	if w.Code != http.StatusOK {
		t.Fatalf("first client's request blocked: %d", w.Code)
	}

	blocked := httptest.NewRequest(http.MethodGet, "/api/v1/product/", nil)
	blocked.RemoteAddr = "10.0.0.1:1234"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, blocked)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected the same client to be limited, got %d", w.Code)
	}

	other := httptest.NewRequest(http.MethodGet, "/api/v1/product/", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, other)
	if w.Code != http.StatusOK {
		t.Fatalf("a different client must not be limited, got %d", w.Code)
	}
}
