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

func makeToken(t *testing.T, secret []byte, issuer, subject, role string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := CustomClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(secret)
	require.NoError(t, err)
	return s
}

func identityEcho(t *testing.T, want *Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if want == nil {
			assert.False(t, ok)
		} else {
			assert.True(t, ok)
			assert.Equal(t, *want, id)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_Valid(t *testing.T) {
	secret := []byte("test-secret")
	mw := Authenticate(secret, "blog")
	handler := mw(identityEcho(t, &Identity{UserID: "user123", Role: "admin"}))

	req := httptest.NewRequest(http.MethodGet, "/likes/p", nil)
	req.Header.Set("Authorization", "Bearer "+makeToken(t, secret, "blog", "user123", "admin", time.Minute))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestAuthenticate_Anonymous(t *testing.T) {
	handler := Authenticate([]byte("test-secret"), "blog")(identityEcho(t, nil))

	req := httptest.NewRequest(http.MethodGet, "/likes/p", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthenticate_Invalid(t *testing.T) {
	secret := []byte("test-secret")
	handler := Authenticate(secret, "blog")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"bad scheme", "Basic abc"},
		{"bad token", "Bearer bad.token.here"},
		{"expired", "Bearer " + makeToken(t, secret, "blog", "user123", "", -time.Minute)},
		{"wrong issuer", "Bearer " + makeToken(t, secret, "other", "user123", "", time.Minute)},
		{"wrong secret", "Bearer " + makeToken(t, []byte("nope"), "blog", "user123", "", time.Minute)},
		{"no subject", "Bearer " + makeToken(t, secret, "blog", "", "", time.Minute)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/likes/p", nil)
			req.Header.Set("Authorization", tt.header)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.JSONEq(t, `{"error":"unauthorized","message":"invalid token"}`, rr.Body.String())
		})
	}
}

func TestAuthenticate_InvalidOnReadIsAnonymous(t *testing.T) {
	secret := []byte("test-secret")
	handler := Authenticate(secret, "blog")(identityEcho(t, nil))

	for _, header := range []string{
		"Bearer expired.or.garbage",
		"Bearer " + makeToken(t, secret, "blog", "user123", "", -time.Minute),
		"Basic abc",
	} {
		for _, method := range []string{http.MethodGet, http.MethodHead} {
			req := httptest.NewRequest(method, "/likes/p", nil)
			req.Header.Set("Authorization", header)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusOK, rr.Code, "%s with %q", method, header)
		}
	}
}

func TestRequireRole(t *testing.T) {
	secret := []byte("test-secret")
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := Authenticate(secret, "")(RequireRole("admin")(ok))

	tests := []struct {
		name string
		role string
		auth bool
		want int
	}{
		{"admin", "admin", true, http.StatusOK},
		{"reader", "reader", true, http.StatusForbidden},
		{"anonymous", "", false, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/counters/x", nil)
			if tt.auth {
				req.Header.Set("Authorization", "Bearer "+makeToken(t, secret, "", "u1", tt.role, time.Minute))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}
