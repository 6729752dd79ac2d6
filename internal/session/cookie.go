package session

import (
	"net/http"
	"strings"

	"github.com/blueDog-Consulting/gh-issues-view/internal/signature"
)

const (
	CookieName = "session"

	// valueDelimiter separates the session ID from its signature inside
	// the cookie value. Session IDs are fixed-length hex and can never
	// contain it.
	valueDelimiter = "."
)

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
	Domain   string
}

// normalize applies safe defaults without breaking callers
func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	if !o.HttpOnly {
		o.HttpOnly = true // secure default
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// EncodeValue builds the signed cookie value "<sessionID>.<signature>".
// The cookie proves issuance only; the session record itself stays
// server-side and must still be looked up in the store.
func EncodeValue(sessionID, secret string) string {
	return sessionID + valueDelimiter + signature.Sign(sessionID, secret)
}

// DecodeValue extracts and verifies the session ID from a signed cookie
// value. A missing, malformed, or tampered value returns ok=false; this
// is the normal unauthenticated outcome, not an error.
func DecodeValue(value, secret string) (string, bool) {
	idx := strings.LastIndex(value, valueDelimiter)
	if idx <= 0 || idx == len(value)-1 {
		return "", false
	}

	sessionID := value[:idx]
	sig := value[idx+1:]

	if !signature.Verify(sessionID, secret, sig) {
		return "", false
	}

	return sessionID, true
}

// SetCookie issues the signed session cookie to the client.
func SetCookie(
	w http.ResponseWriter,
	sessionID string,
	secret string,
	opts CookieOptions,
) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    EncodeValue(sessionID, secret),
		Path:     opts.Path,
		Domain:   opts.Domain,
		MaxAge:   int(TTL.Seconds()),
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// ClearCookie removes the session cookie from the client.
func ClearCookie(
	w http.ResponseWriter,
	opts CookieOptions,
) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     opts.Path,
		Domain:   opts.Domain,
		MaxAge:   -1,
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}
