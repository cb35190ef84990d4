package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientKey(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": " 203.0.113.7 , 10.0.0.1"}, "203.0.113.7"},
		{"forwarded wins over real ip", map[string]string{"X-Forwarded-For": "203.0.113.7", "X-Real-IP": "198.51.100.2"}, "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.2"}, "198.51.100.2"},
		{"no headers", nil, DefaultClient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientKey(r))
		})
	}
}

func TestRetryAfter(t *testing.T) {
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 60, retryAfter(base, time.Minute))
	assert.Equal(t, 45, retryAfter(base.Add(15*time.Second), time.Minute))
	assert.Equal(t, 1, retryAfter(base.Add(59*time.Second+500*time.Millisecond), time.Minute))
}

func newRouter(l *Limiter, p Preset) http.Handler {
	r := chi.NewRouter()
	r.With(l.Middleware(p)).Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestMiddlewareLimits(t *testing.T) {
	p := Preset{Name: "tiny", Requests: 2, Window: time.Hour}
	router := newRouter(New(true), p)

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Forwarded-For", ip)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, do("203.0.113.1").Code)
	assert.Equal(t, http.StatusOK, do("203.0.113.1").Code)

	w := do("203.0.113.1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body limitResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Too many requests", body.Error)
	assert.Positive(t, body.RetryAfter)

	assert.Equal(t, http.StatusOK, do("203.0.113.2").Code, "other clients keep their budget")
}

func TestMiddlewareDisabled(t *testing.T) {
	router := newRouter(New(false), Preset{Name: "tiny", Requests: 1, Window: time.Hour})
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestPresets(t *testing.T) {
	assert.Equal(t, 10, Strict.Requests)
	assert.Equal(t, 30, Standard.Requests)
	assert.Equal(t, 100, Relaxed.Requests)
}
