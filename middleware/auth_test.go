package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClerkJWT builds a syntactically valid JWT that is not signed by Clerk.
func mockClerkJWT(t *testing.T, clerkID string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": clerkID,
		"iss": "https://clerk.test",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret-key-for-testing-only"))
	require.NoError(t, err)
	return signed
}

func TestClerkAuthMiddlewareRejections(t *testing.T) {
	handler := ClerkAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached without valid auth")
	}))

	doRequest := func(authHeader string) int {
		req := httptest.NewRequest("GET", "/api/v1/habits", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, doRequest(""), "missing header")
	assert.Equal(t, http.StatusUnauthorized, doRequest("token-without-bearer"), "malformed header")
	// Well-formed JWT, but not signed by Clerk.
	assert.Equal(t, http.StatusUnauthorized, doRequest("Bearer "+mockClerkJWT(t, "user_123")))
}

func TestGetClerkID(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	_, ok := GetClerkID(req.Context())
	assert.False(t, ok)
}
