package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/hlog"
)

// CustomClaims extends RegisteredClaims with application-specific fields.
type CustomClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID string
	Role   string
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity set by Authenticate, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// Authenticate validates HMAC-signed bearer tokens. Requests without an
// Authorization header pass through anonymously. An invalid header is
// rejected on writes; reads stay public and continue anonymously. On success
// the token's subject and role become the request Identity.
func Authenticate(secret []byte, expectedIssuer string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				next.ServeHTTP(w, r)
				return
			}
			id, err := verifyBearer(auth, secret, expectedIssuer)
			if err != nil {
				hlog.FromRequest(r).Debug().Err(err).Str("method", r.Method).Msg("bearer token rejected")
				if r.Method == http.MethodGet || r.Method == http.MethodHead {
					next.ServeHTTP(w, r)
					return
				}
				writeUnauthorized(w, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func verifyBearer(auth string, secret []byte, expectedIssuer string) (Identity, error) {
	parts := strings.Fields(auth)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return Identity{}, errors.New("invalid Authorization header format")
	}

	var claims CustomClaims
	token, err := jwt.ParseWithClaims(parts[1], &claims, func(t *jwt.Token) (interface{}, error) {
		// enforce HMAC
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	switch {
	case err != nil:
		return Identity{}, err
	case !token.Valid:
		return Identity{}, errors.New("token not valid")
	case claims.ExpiresAt == nil:
		return Identity{}, errors.New("token missing exp claim")
	case time.Now().After(claims.ExpiresAt.Time):
		return Identity{}, errors.New("token is expired")
	case expectedIssuer != "" && claims.Issuer != expectedIssuer:
		return Identity{}, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	case claims.Subject == "":
		return Identity{}, errors.New("token missing sub claim")
	}
	return Identity{UserID: claims.Subject, Role: claims.Role}, nil
}

// RequireRole admits only authenticated callers holding one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				writeUnauthorized(w, "authentication required")
				return
			}
			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			hlog.FromRequest(r).Warn().Str("role", id.Role).Str("path", r.URL.Path).Msg("role denied")
			writeError(w, http.StatusForbidden, "forbidden", "insufficient permissions")
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusUnauthorized, "unauthorized", msg)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": msg})
}
