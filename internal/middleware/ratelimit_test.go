package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRateLimitedHandler(t *testing.T, requestsPerWindow int, window time.Duration) (http.Handler, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	handler := RateLimitMiddleware(redisClient, RateLimitConfig{
		RequestsPerWindow: requestsPerWindow,
		Window:            window,
		KeyPrefix:         "ratelimit",
	}, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	return handler, mr
}

func doRequest(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// Requests beyond the per-window allowance must get a 429, for any
// combination of allowance and excess.
func TestProperty_RateLimitingBlocksExcessiveRequests(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("exactly the allowance passes, the excess is blocked", prop.ForAll(
		func(requestsPerWindow int, excessRequests int) bool {
			handler, _ := newRateLimitedHandler(t, requestsPerWindow, time.Second)

			successCount := 0
			blockedCount := 0
			for i := 0; i < requestsPerWindow+excessRequests; i++ {
				switch doRequest(handler, "192.168.1.100:52811").Code {
				case http.StatusOK:
					successCount++
				case http.StatusTooManyRequests:
					blockedCount++
				}
			}

			if successCount != requestsPerWindow || blockedCount != excessRequests {
				t.Logf("FAIL: allowed %d of %d, blocked %d of %d",
					successCount, requestsPerWindow, blockedCount, excessRequests)
				return false
			}
			return true
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRateLimitIsPerClientAddress(t *testing.T) {
	handler, _ := newRateLimitedHandler(t, 2, time.Second)

	// One shopper exhausts their allowance.
	assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.1:41000").Code)
	assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.1:41000").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, "10.0.0.1:41000").Code)

	// A different address is not affected.
	assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.2:41000").Code)
}

func TestRateLimitWindowExpires(t *testing.T) {
	handler, mr := newRateLimitedHandler(t, 1, time.Second)

	assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.3:41000").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, "10.0.0.3:41000").Code)

	mr.FastForward(2 * time.Second)

	assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.3:41000").Code)
}

func TestRateLimitHeaders(t *testing.T) {
	handler, _ := newRateLimitedHandler(t, 2, time.Second)

	w := doRequest(handler, "10.0.0.4:41000")
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	doRequest(handler, "10.0.0.4:41000")
	w = doRequest(handler, "10.0.0.4:41000")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "rate limit exceeded", response.Error.Message)
}

// A Redis outage must degrade to serving requests, not to refusing them.
func TestRateLimitFailsOpenOnRedisOutage(t *testing.T) {
	handler, mr := newRateLimitedHandler(t, 1, time.Second)
	mr.Close()

	assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.5:41000").Code)
	assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.5:41000").Code)
}
