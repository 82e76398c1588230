package middleware

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"
)

const (
	// SessionKeyHeader lets API clients carry the key explicitly instead of
	// relying on cookies.
	SessionKeyHeader = "X-Session-Key"

	// SessionCookieName is the browser cookie holding the session key.
	SessionCookieName = "wm_session"

	// SessionKeyContextKey is the context key for the resolved session key
	SessionKeyContextKey contextKey = "session_key"

	// sessionCookieTTL matches the customer session token lifetime.
	sessionCookieTTL = 365 * 24 * time.Hour
)

// WithSessionKey resolves the device-scoped session key that identifies one
// customer's checkout. The header wins over the cookie; when neither is
// present a new key is generated and set as a cookie.
func WithSessionKey(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(SessionKeyHeader)
			if key == "" {
				if cookie, err := r.Cookie(SessionCookieName); err == nil {
					key = cookie.Value
				}
			}

			if key == "" {
				generated, err := generateSessionKey()
				if err != nil {
					respondWithError(w, r, err)
					return
				}
				key = generated
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    key,
					Path:     "/",
					MaxAge:   int(sessionCookieTTL.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			// Echo the key so header-based clients can persist it.
			w.Header().Set(SessionKeyHeader, key)

			ctx := context.WithValue(r.Context(), SessionKeyContextKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionKey retrieves the session key from the context
func GetSessionKey(ctx context.Context) string {
	if key, ok := ctx.Value(SessionKeyContextKey).(string); ok {
		return key
	}
	return ""
}

// generateSessionKey generates a cryptographically secure session key.
func generateSessionKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
