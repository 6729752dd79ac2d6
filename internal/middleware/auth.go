package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/blueDog-Consulting/gh-issues-view/internal/logger"
	"github.com/blueDog-Consulting/gh-issues-view/internal/session"
)

// unexported, collision-proof context key
type sessionContextKeyType struct{}

var sessionKey = sessionContextKeyType{}

// SessionFromContext extracts the authenticated session from context.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*session.Session)
	return s, ok
}

type AuthMiddleware struct {
	Store  session.Store
	Secret string
}

func NewAuthMiddleware(store session.Store, secret string) *AuthMiddleware {
	return &AuthMiddleware{Store: store, Secret: secret}
}

const unauthorizedBody = `{"error":"Unauthorized"}`

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(unauthorizedBody))
}

func storeFailure(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(`{"error":"Internal server error"}`))
}

// RequireAuth gates a handler on a valid session. The cookie signature is
// checked before any store round trip; a verified signature proves the
// cookie was issued here, not that the session still exists, so the store
// lookup is mandatory. A signature mismatch and a missing record are
// deliberately indistinguishable to the client.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Read session cookie
		cookie, err := r.Cookie(session.CookieName)
		if err != nil || cookie.Value == "" {
			unauthorized(w)
			return
		}

		// 2. Verify signature, extract session ID
		sessionID, ok := session.DecodeValue(cookie.Value, a.Secret)
		if !ok {
			unauthorized(w)
			return
		}

		// 3. Load session. A store outage is not an auth decision; it
		// fails the request outright.
		sess, err := a.Store.Get(r.Context(), sessionID)
		if err != nil {
			logger.Error("session store lookup failed", map[string]any{
				"error": err.Error(),
			})
			storeFailure(w)
			return
		}
		if sess == nil {
			unauthorized(w)
			return
		}

		// 4. Enforce session expiry
		if time.Now().After(sess.ExpiresAt) {
			_ = a.Store.Delete(r.Context(), sessionID)
			unauthorized(w)
			return
		}

		// 5. Attach session to context
		ctx := context.WithValue(r.Context(), sessionKey, sess)

		// 6. Continue request
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
