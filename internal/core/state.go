package core

import "github.com/clouddice/dice-server/internal/domain"

const (
	// MaxRollHistory is the retention cap for the room's roll log.
	MaxRollHistory = 50
	// SnapshotRolls is how much of that log a joining client receives.
	SnapshotRolls = 10
)

// roomState holds the membership map and the bounded roll log. Pure data
// and invariant enforcement; callers provide the locking.
type roomState struct {
	users map[domain.ConnID]*domain.User
	rolls []domain.DiceRoll
}

func newRoomState() *roomState {
	return &roomState{users: make(map[domain.ConnID]*domain.User)}
}

// registerUser inserts the user, overwriting any prior entry at the same
// identity. Re-join is idempotent, never an error.
func (s *roomState) registerUser(user *domain.User) {
	s.users[user.ID] = user
}

// removeUser deletes the entry if present and reports whether a removal
// occurred. Unknown identities are a no-op.
func (s *roomState) removeUser(id domain.ConnID) (*domain.User, bool) {
	user, ok := s.users[id]
	if !ok {
		return nil, false
	}
	delete(s.users, id)
	return user, true
}

// appendRoll pushes to the tail of the log, evicting from the head so the
// log never exceeds MaxRollHistory.
func (s *roomState) appendRoll(roll domain.DiceRoll) {
	s.rolls = append(s.rolls, roll)
	if len(s.rolls) > MaxRollHistory {
		s.rolls = s.rolls[len(s.rolls)-MaxRollHistory:]
	}
}

// snapshot returns a read-only view: every user plus the last
// SnapshotRolls entries of the log, oldest first.
func (s *roomState) snapshot() Snapshot {
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	recent := s.rolls
	if len(recent) > SnapshotRolls {
		recent = recent[len(recent)-SnapshotRolls:]
	}
	rolls := make([]domain.DiceRoll, len(recent))
	copy(rolls, recent)
	return Snapshot{Users: users, RecentRolls: rolls}
}

func (s *roomState) userCount() int {
	return len(s.users)
}
