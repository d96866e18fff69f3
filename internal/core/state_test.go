package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clouddice/dice-server/internal/domain"
)

func testRoll(n int) domain.DiceRoll {
	return domain.DiceRoll{
		UserID:   "conn-1",
		Nickname: fmt.Sprintf("roller-%d", n),
		Values:   []int{n % 6},
		Total:    n % 6,
	}
}

func TestRegisterUser(t *testing.T) {
	s := newRoomState()

	s.registerUser(&domain.User{ID: "a", Nickname: "Alice"})
	s.registerUser(&domain.User{ID: "b", Nickname: "Bob"})
	assert.Equal(t, 2, s.userCount())

	t.Run("re-join overwrites the existing entry", func(t *testing.T) {
		s.registerUser(&domain.User{ID: "a", Nickname: "Alicia"})
		assert.Equal(t, 2, s.userCount())
		assert.Equal(t, "Alicia", s.users["a"].Nickname)
	})
}

func TestRemoveUser(t *testing.T) {
	s := newRoomState()
	s.registerUser(&domain.User{ID: "a", Nickname: "Alice"})

	removed, ok := s.removeUser("a")
	require.True(t, ok)
	assert.Equal(t, "Alice", removed.Nickname)
	assert.Equal(t, 0, s.userCount())

	t.Run("second removal is a no-op", func(t *testing.T) {
		_, ok := s.removeUser("a")
		assert.False(t, ok)
	})

	t.Run("unknown identity is a no-op", func(t *testing.T) {
		_, ok := s.removeUser("ghost")
		assert.False(t, ok)
	})
}

func TestAppendRollBoundedHistory(t *testing.T) {
	s := newRoomState()
	for n := 1; n <= 60; n++ {
		s.appendRoll(testRoll(n))
	}

	require.Len(t, s.rolls, MaxRollHistory)
	// The retained window is rolls #11..#60 in arrival order.
	assert.Equal(t, "roller-11", s.rolls[0].Nickname)
	assert.Equal(t, "roller-60", s.rolls[MaxRollHistory-1].Nickname)
	for i := 0; i < MaxRollHistory; i++ {
		assert.Equal(t, fmt.Sprintf("roller-%d", i+11), s.rolls[i].Nickname)
	}
}

func TestSnapshot(t *testing.T) {
	t.Run("empty room", func(t *testing.T) {
		snap := newRoomState().snapshot()
		assert.Empty(t, snap.Users)
		assert.Empty(t, snap.RecentRolls)
		assert.NotNil(t, snap.Users)
		assert.NotNil(t, snap.RecentRolls)
	})

	t.Run("caps rolls at the join digest length", func(t *testing.T) {
		s := newRoomState()
		s.registerUser(&domain.User{ID: "a", Nickname: "Alice"})
		for n := 1; n <= 25; n++ {
			s.appendRoll(testRoll(n))
		}

		snap := s.snapshot()
		require.Len(t, snap.Users, 1)
		require.Len(t, snap.RecentRolls, SnapshotRolls)
		assert.Equal(t, "roller-16", snap.RecentRolls[0].Nickname)
		assert.Equal(t, "roller-25", snap.RecentRolls[SnapshotRolls-1].Nickname)
	})

	t.Run("is detached from the live log", func(t *testing.T) {
		s := newRoomState()
		s.appendRoll(testRoll(1))
		snap := s.snapshot()
		s.appendRoll(testRoll(2))
		assert.Len(t, snap.RecentRolls, 1)
	})
}
