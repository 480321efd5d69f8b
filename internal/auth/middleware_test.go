package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastebite/storefront/internal/auth"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

// captureIdentity records the identity the middleware put on the request
// context, or nil when none was attached.
func captureIdentity(got **auth.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_AnonymousPassesThrough(t *testing.T) {
	var got *auth.Identity
	handler := auth.Middleware(testSecret)(captureIdentity(&got))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/menu", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, got)
}

func TestMiddleware_ValidTokenAttachesIdentity(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":   userID.String(),
		"email": "customer@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	var got *auth.Identity
	handler := auth.Middleware(testSecret)(captureIdentity(&got))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, got)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "customer@example.com", got.Email)
}

func TestMiddleware_RejectsBadTokens(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name   string
		header string
	}{
		{
			name:   "not_a_bearer_scheme",
			header: "Basic dXNlcjpwYXNz",
		},
		{
			name:   "garbage_token",
			header: "Bearer not.a.token",
		},
		{
			name: "wrong_secret",
			header: "Bearer " + signToken(t, "other-secret", jwt.MapClaims{
				"sub": userID.String(),
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			name: "expired",
			header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"sub": userID.String(),
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
		},
		{
			name: "missing_subject",
			header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"email": "customer@example.com",
				"exp":   time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			name: "subject_not_a_uuid",
			header: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"sub": "42",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := auth.Middleware(testSecret)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			req.Header.Set("Authorization", tt.header)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.False(t, called, "handler must not run for a rejected token")
		})
	}
}
