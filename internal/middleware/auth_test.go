package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jharmon/tripfolio/internal/middleware"
)

const testSecret = "test-secret"

// signToken mints an HS256 token for the given user id, the same shape the
// authentication layer issues.
func signToken(t *testing.T, userID string, expiresAt time.Time) string {
	t.Helper()
	claims := middleware.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

// ownerEchoHandler writes the owner id resolved by the auth middleware, or 500
// if none was stored in the context.
var ownerEchoHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Write([]byte(id.String()))
})

func TestAuthHandler_ValidToken_ResolvesOwner(t *testing.T) {
	ownerID := uuid.New()
	h := middleware.NewAuthHandler(testSecret)(ownerEchoHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/travelers", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, ownerID.String(), time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ownerID.String(), rec.Body.String())
}

func TestAuthHandler_MissingHeader_Returns401(t *testing.T) {
	h := middleware.NewAuthHandler(testSecret)(ownerEchoHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/travelers", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"missing bearer token"}`, rec.Body.String())
}

func TestAuthHandler_MalformedHeader_Returns401(t *testing.T) {
	h := middleware.NewAuthHandler(testSecret)(ownerEchoHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/travelers", nil)
	req.Header.Set("Authorization", "Token abc123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_WrongSecret_Returns401(t *testing.T) {
	ownerID := uuid.New()
	h := middleware.NewAuthHandler("a-different-secret")(ownerEchoHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/travelers", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, ownerID.String(), time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_ExpiredToken_Returns401(t *testing.T) {
	ownerID := uuid.New()
	h := middleware.NewAuthHandler(testSecret)(ownerEchoHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/travelers", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, ownerID.String(), time.Now().Add(-time.Hour)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_NonUUIDUserID_Returns401(t *testing.T) {
	h := middleware.NewAuthHandler(testSecret)(ownerEchoHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/travelers", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "not-a-uuid", time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOwnerFromContext_AbsentWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/travelers", nil)

	_, ok := middleware.OwnerFromContext(req.Context())

	assert.False(t, ok)
}
