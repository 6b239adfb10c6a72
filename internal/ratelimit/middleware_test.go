package ratelimit_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ashita-ai/knapsack/internal/ratelimit"
)

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

func (s *stubLimiter) Close() error { return nil }

func serve(l ratelimit.Limiter, keyFunc ratelimit.KeyFunc) *httptest.ResponseRecorder {
	deny := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTooManyRequests) }
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := ratelimit.Middleware(l, keyFunc, 1500*time.Millisecond, deny)(ok)

	req := httptest.NewRequest(http.MethodPost, "/api/knapsack/solve", nil)
	req.RemoteAddr = "192.0.2.7:54321"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware(t *testing.T) {
	t.Run("allowed", func(t *testing.T) {
		l := &stubLimiter{allow: true}
		rec := serve(l, ratelimit.IPKeyFunc)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, []string{"ip:192.0.2.7"}, l.keys)
	})
	t.Run("denied", func(t *testing.T) {
		rec := serve(&stubLimiter{allow: false}, ratelimit.IPKeyFunc)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	})
	t.Run("limiter error fails open", func(t *testing.T) {
		rec := serve(&stubLimiter{err: errors.New("boom")}, ratelimit.IPKeyFunc)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
	t.Run("empty key skips", func(t *testing.T) {
		l := &stubLimiter{allow: false}
		rec := serve(l, func(*http.Request) string { return "" })
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, l.keys)
	})
	t.Run("nil limiter", func(t *testing.T) {
		rec := serve(nil, ratelimit.IPKeyFunc)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
