package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIDShape(t *testing.T) {
	id, err := GenerateID()
	require.NoError(t, err)

	assert.Len(t, id, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", id)
	// Hex can never contain the cookie value delimiter.
	assert.NotContains(t, id, ".")
}

func TestGenerateIDIsUnique(t *testing.T) {
	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		id, err := GenerateID()
		require.NoError(t, err)

		_, dup := seen[id]
		require.False(t, dup, "duplicate session id generated")
		seen[id] = struct{}{}
	}
}
