package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/askpeer/askpeer-be/internal/models"
)

// Claims defines the JWT claims structure carried by a session token.
type Claims struct {
	Username string `json:"username"`
	UserID   int64  `json:"userid"`
	jwt.RegisteredClaims
}

type contextKey string

// UserClaimsKey is the context key for user claims.
const UserClaimsKey = contextKey("userClaims")

// TokenService issues and verifies signed session tokens. The signing secret
// is provided once at construction; no package-level state.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given shared secret and
// token lifetime.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Generate creates a new signed token for a user.
func (ts *TokenService) Generate(userID int64, username string) (string, error) {
	claims := &Claims{
		Username: username,
		UserID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ts.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ts.secret)
}

// Verify parses and validates a token string. Any failure (bad signature,
// expired, malformed payload) is reported as ErrUnauthenticated so callers
// cannot distinguish failure modes.
func (ts *TokenService) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, models.ErrUnauthenticated
		}
		return ts.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, models.ErrUnauthenticated
	}
	return claims, nil
}

// Middleware creates a middleware for protecting routes. It extracts the
// bearer token from the Authorization header, verifies it, and attaches the
// decoded claims to the request context. Every failure path returns the same
// 401 response.
func (ts *TokenService) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				unauthenticated(w)
				return
			}

			claims, err := ts.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				unauthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the authenticated caller's claims, if present.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(*Claims)
	return claims, ok
}

func unauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"authentication invalid"}`))
}
