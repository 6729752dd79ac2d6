package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Validation happens before any Redis round trip, so these paths are
// testable without a backend.

func TestRedisStoreCreateRejectsIncompleteSession(t *testing.T) {
	store := NewRedisStore(nil)

	err := store.Create(context.Background(), Session{
		SessionID: "abc",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	assert.Error(t, err)

	err = store.Create(context.Background(), Session{
		AccessToken: "tok",
		ExpiresAt:   time.Now().Add(time.Hour),
	})
	assert.Error(t, err)
}

func TestRedisStoreCreateRejectsPastExpiry(t *testing.T) {
	store := NewRedisStore(nil)

	err := store.Create(context.Background(), Session{
		SessionID:   "abc",
		AccessToken: "tok",
		ExpiresAt:   time.Now().Add(-time.Minute),
	})
	assert.Error(t, err)
}

func TestRedisStoreKeyIsNamespaced(t *testing.T) {
	store := NewRedisStore(nil)

	assert.Equal(t, "session:abc123", store.key("abc123"))
}
