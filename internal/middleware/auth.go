package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ownerKey is the context key under which the authenticated owner id is stored.
// An unexported struct type cannot collide with keys from other packages.
type ownerKey struct{}

// Claims is the JWT payload issued by the authentication layer.
// Only the user id is consumed here; the API trusts it completely and performs
// no further verification of the user's existence.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// NewAuthHandler returns a middleware that validates the Authorization bearer
// token with the given HMAC secret and stores the owning user's id in the
// request context. Requests without a valid token receive 401 with the API's
// standard error envelope.
func NewAuthHandler(secret string) func(http.Handler) http.Handler {
	secretBytes := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerFromHeader(r.Header.Get("Authorization"))
			if token == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (any, error) {
				return secretBytes, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			claims, ok := parsed.Claims.(*Claims)
			if !ok || !parsed.Valid {
				unauthorized(w, "invalid token")
				return
			}

			ownerID, err := uuid.Parse(claims.UserID)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), ownerID)))
		})
	}
}

// WithOwner returns a context carrying the authenticated owner id.
// Exported so handler tests can inject an owner without minting tokens.
func WithOwner(ctx context.Context, ownerID uuid.UUID) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerFromContext returns the authenticated owner id stored by NewAuthHandler.
// The second return is false when the request never passed the auth middleware.
func OwnerFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ownerKey{}).(uuid.UUID)
	return id, ok
}

// bearerFromHeader extracts the token from an "Authorization: Bearer x" header.
func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// unauthorized writes the API's standard error envelope with status 401.
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"success":false,"error":"` + message + `"}`))
}
