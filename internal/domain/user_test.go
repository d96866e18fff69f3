package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeNickname(t *testing.T) {
	t.Run("trims surrounding whitespace", func(t *testing.T) {
		got, err := SanitizeNickname("  Alice  ")
		require.NoError(t, err)
		assert.Equal(t, "Alice", got)
	})

	t.Run("truncates to the maximum length", func(t *testing.T) {
		got, err := SanitizeNickname(strings.Repeat("A", 100))
		require.NoError(t, err)
		assert.Len(t, got, MaxNicknameLen)
	})

	t.Run("trims before truncating", func(t *testing.T) {
		got, err := SanitizeNickname("   " + strings.Repeat("B", 25))
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("B", MaxNicknameLen), got)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := SanitizeNickname("")
		assert.ErrorIs(t, err, ErrNicknameEmpty)
	})

	t.Run("rejects whitespace-only input", func(t *testing.T) {
		_, err := SanitizeNickname("   \t ")
		assert.ErrorIs(t, err, ErrNicknameEmpty)
	})

	t.Run("keeps multibyte nicknames intact", func(t *testing.T) {
		got, err := SanitizeNickname(strings.Repeat("é", 30))
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("é", MaxNicknameLen), got)
	})
}

func TestNewUser(t *testing.T) {
	t.Run("builds a sanitized record", func(t *testing.T) {
		user, err := NewUser("conn-1", " Alice ")
		require.NoError(t, err)
		assert.Equal(t, ConnID("conn-1"), user.ID)
		assert.Equal(t, "Alice", user.Nickname)
	})

	t.Run("propagates validation failures", func(t *testing.T) {
		_, err := NewUser("conn-1", "   ")
		assert.ErrorIs(t, err, ErrNicknameEmpty)
	})
}
