// Package core implements the room: membership, bounded roll history,
// and the per-connection session protocol that mutates them.
package core

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/clouddice/dice-server/internal/domain"
)

var ErrJoinRequired = errors.New("join required")

// Room is the single shared game session. One mutex serializes every
// operation end to end, validation through broadcast, so no caller ever
// observes a partially updated room and events fan out in the order the
// requests were handled. TrySend never blocks, so holding the lock across
// emission is safe.
//
// Connections are tracked separately from users: a client receives
// broadcasts from the moment its transport attaches, joined or not.
type Room struct {
	mu     sync.Mutex
	state  *roomState
	conns  map[domain.ConnID]Sender
	roller *domain.Roller
}

// NewRoom builds an isolated room instance. Callers inject it into the
// connection layer; there is no package-level singleton.
func NewRoom(roller *domain.Roller) *Room {
	return &Room{
		state:  newRoomState(),
		conns:  make(map[domain.ConnID]Sender),
		roller: roller,
	}
}

// Attach registers a live connection so it receives broadcasts. Called by
// the transport right after the handshake, before any join.
func (r *Room) Attach(id domain.ConnID, conn Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = conn
	log.Info().Str("module", "core.room").Str("conn", string(id)).Msg("connection attached")
}

// Join validates the nickname, registers the user, unicasts the joined
// snapshot to the requester and announces the arrival to everyone else.
func (r *Room) Join(id domain.ConnID, nickname string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Validation fully precedes any state write.
	user, err := domain.NewUser(id, nickname)
	if err != nil {
		return err
	}

	r.state.registerUser(user)
	snap := r.state.snapshot()

	r.unicast(id, newJoinedFrame(id, snap))
	r.broadcast(newUserJoinedFrame(*user), id)

	log.Info().Str("module", "core.room").Str("conn", string(id)).Str("nickname", user.Nickname).Msg("user joined")
	return nil
}

// Roll re-validates membership, clamps the requested count, generates the
// outcome, appends it to the history and broadcasts it to every
// connection including the roller's.
func (r *Room) Roll(id domain.ConnID, requested int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.state.users[id]
	if !ok {
		return ErrJoinRequired
	}

	count := domain.ClampDiceCount(requested)
	roll := domain.NewRoll(user, r.roller.RollDice(count))
	r.state.appendRoll(roll)

	r.broadcast(newDiceRolledFrame(roll), "")

	log.Info().Str("module", "core.room").Str("nickname", user.Nickname).Ints("values", roll.Values).Int("total", roll.Total).Msg("dice rolled")
	return nil
}

// Disconnect drops the connection and, if it had joined, removes the user
// and announces the departure. Idempotent: a second disconnect for the
// same identity is a silent no-op.
func (r *Room) Disconnect(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, id)
	user, removed := r.state.removeUser(id)
	if !removed {
		return
	}

	r.broadcast(newUserLeftFrame(id), "")
	log.Info().Str("module", "core.room").Str("nickname", user.Nickname).Msg("user left")
}

// UserCount reports joined membership for the health endpoint.
func (r *Room) UserCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.userCount()
}

// unicast delivers to one connection. Caller holds the lock.
func (r *Room) unicast(id domain.ConnID, frame Frame) {
	conn, ok := r.conns[id]
	if !ok {
		return
	}
	if err := conn.TrySend(frame); err != nil {
		log.Warn().Str("module", "core.room").Str("conn", string(id)).Err(err).Msg("unicast dropped")
	}
}

// broadcast fans out to every attached connection except the one named by
// skip. Slow consumers drop the frame rather than stall the room. Caller
// holds the lock.
func (r *Room) broadcast(frame Frame, skip domain.ConnID) {
	sent := 0
	for id, conn := range r.conns {
		if id == skip {
			continue
		}
		if err := conn.TrySend(frame); err != nil {
			log.Warn().Str("module", "core.room").Str("conn", string(id)).Err(err).Msg("broadcast dropped")
			continue
		}
		sent++
	}
	log.Debug().Str("module", "core.room").Int("sent_to", sent).Msg("broadcast")
}
