package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitMiddleware(t *testing.T) {
	handler := RateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	doRequest := func(ip string) int {
		req := httptest.NewRequest("GET", "/api/v1/habits", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// A fresh IP gets the full burst, then hits the limit.
	ip := "203.0.113.7"
	for i := 0; i < 30; i++ {
		assert.Equal(t, http.StatusOK, doRequest(ip), "request %d should pass", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, doRequest(ip))

	// Another IP has its own bucket.
	assert.Equal(t, http.StatusOK, doRequest("203.0.113.8"))
}

func TestGetLimiterReusesVisitor(t *testing.T) {
	first := getLimiter("198.51.100.1")
	second := getLimiter("198.51.100.1")
	assert.Same(t, first, second)
}
