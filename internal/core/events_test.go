package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeClientMessage(t *testing.T) {
	t.Run("join", func(t *testing.T) {
		msg, err := DecodeClientMessage([]byte(`{"type":"join","nickname":"Alice"}`))
		require.NoError(t, err)
		assert.Equal(t, KindJoin, msg.Kind)
		assert.Equal(t, "Alice", msg.Nickname)
	})

	t.Run("roll", func(t *testing.T) {
		msg, err := DecodeClientMessage([]byte(`{"type":"roll","diceCount":3}`))
		require.NoError(t, err)
		assert.Equal(t, KindRoll, msg.Kind)
		assert.Equal(t, 3, msg.DiceCount)
	})

	t.Run("fractional dice count is floored", func(t *testing.T) {
		msg, err := DecodeClientMessage([]byte(`{"type":"roll","diceCount":3.9}`))
		require.NoError(t, err)
		assert.Equal(t, 3, msg.DiceCount)
	})

	t.Run("missing dice count decodes to zero", func(t *testing.T) {
		msg, err := DecodeClientMessage([]byte(`{"type":"roll"}`))
		require.NoError(t, err)
		assert.Equal(t, 0, msg.DiceCount)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := DecodeClientMessage([]byte(`{"type":"dance"}`))
		assert.ErrorIs(t, err, ErrUnknownMessage)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := DecodeClientMessage([]byte(`{"type":`))
		assert.Error(t, err)
	})
}
