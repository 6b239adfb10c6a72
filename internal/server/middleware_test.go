package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/knapsack/internal/ctxutil"
	"github.com/ashita-ai/knapsack/internal/model"
	"github.com/ashita-ai/knapsack/internal/ratelimit"
	"github.com/ashita-ai/knapsack/internal/testutil"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimitMiddleware(t *testing.T) {
	// rate=1 token/sec and burst=2: the first two rapid requests drain the
	// burst and the third is rejected until tokens refill.
	limiter := ratelimit.NewMemoryLimiter(1, 2)
	defer func() { _ = limiter.Close() }()

	handler := rateLimitMiddleware(limiter, time.Second, okHandler)

	for i := range 3 {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/knapsack/history", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		handler.ServeHTTP(rec, req)

		if i < 2 {
			assert.Equal(t, http.StatusOK, rec.Code, "request %d within burst", i+1)
			continue
		}
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))

		var apiErr model.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Equal(t, model.ErrCodeRateLimited, apiErr.Error.Code)
	}
}

func TestRateLimitMiddleware_DifferentIPs(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(1, 1)
	defer func() { _ = limiter.Close() }()

	handler := rateLimitMiddleware(limiter, time.Second, okHandler)

	send := func(addr string) int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/path", nil)
		req.RemoteAddr = addr
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1000"), "other IPs keep their own bucket")
}

func TestRateLimitMiddleware_HealthExempt(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(1, 1)
	defer func() { _ = limiter.Close() }()

	handler := rateLimitMiddleware(limiter, time.Second, okHandler)
	for range 5 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxutil.RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Len(t, seen, 36, "generated ids are UUIDs")
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	rec := httptest.NewRecorder()
	securityHeadersMiddleware(okHandler).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestCORSMiddleware(t *testing.T) {
	handler := corsMiddleware([]string{"https://app.example.com"}, okHandler)

	t.Run("preflight", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/knapsack/solve", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("disallowed origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "https://anything.example.com")
		corsMiddleware([]string{"*"}, okHandler).ServeHTTP(rec, req)
		assert.Equal(t, "https://anything.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(testutil.TestLogger(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		payload string
		max     int64
		wantErr bool
		tooBig  bool
	}{
		{"valid", `{"name":"a"}`, 1024, false, false},
		{"unknown field", `{"nope":1}`, 1024, true, false},
		{"trailing object", `{"name":"a"}{"name":"b"}`, 1024, true, false},
		{"too large", `{"name":"` + strings.Repeat("x", 100) + `"}`, 16, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got body
			req := httptest.NewRequest("POST", "/", bytes.NewBufferString(tt.payload))
			err := decodeJSON(httptest.NewRecorder(), req, &got, tt.max)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "a", got.Name)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.tooBig, err == errBodyTooLarge)
		})
	}
}
