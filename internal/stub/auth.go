package stub

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MintToken issues a dev bearer token for the stub.
func MintToken(secret, subject string, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return token, nil
}

// Auth validates the Authorization bearer token on every request.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "missing bearer token"})
				return
			}

			_, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}

				return []byte(secret), nil
			})
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "invalid token"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CSRF enforces the anti-forgery header on mutating calls.
func CSRF(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Header.Get("X-CSRF-Token") != token {
				writeJSON(w, http.StatusForbidden, map[string]any{"ok": false, "error": "bad anti-forgery token"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
