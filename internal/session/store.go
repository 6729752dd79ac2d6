package session

import (
	"context"
	"time"
)

// TTL is how long a session lives from creation. There is no sliding
// renewal; the expiry set at login is absolute.
const TTL = 30 * 24 * time.Hour

// User is the identity snapshot cached at login so that later requests
// do not need to re-fetch the profile from GitHub.
type User struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// Session represents an authenticated user session. The access token is
// the GitHub bearer credential used by the API proxy on the user's behalf.
type Session struct {
	SessionID   string    `json:"session_id"`
	AccessToken string    `json:"access_token"`
	User        User      `json:"user"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Store defines how sessions are stored and retrieved.
// Implementations (e.g., Redis) must remain stateless and opaque.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}
