package core

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/clouddice/dice-server/internal/domain"
)

type sessionState int

const (
	stateConnected sessionState = iota
	stateJoined
	stateClosed
)

// Session is the per-connection protocol state machine:
// Connected -> Joined -> Closed. It decodes inbound frames, enforces the
// join-before-roll rule and translates failures into unicast error
// events. Nothing here ever reaches other connections; errors are never
// broadcast.
//
// A session is driven by a single reader goroutine, so its state field
// needs no locking; all shared-room access goes through Room's mutex.
type Session struct {
	id    domain.ConnID
	room  *Room
	conn  Sender
	state sessionState
}

func NewSession(id domain.ConnID, room *Room, conn Sender) *Session {
	return &Session{id: id, room: room, conn: conn}
}

func (s *Session) ID() domain.ConnID { return s.id }

// Handle processes one inbound frame to completion. Unknown or malformed
// envelopes are logged and dropped, matching a transport that simply has
// no handler registered for them.
func (s *Session) Handle(data []byte) {
	if s.state == stateClosed {
		return
	}
	msg, err := DecodeClientMessage(data)
	if err != nil {
		log.Warn().Str("module", "core.session").Str("conn", string(s.id)).Err(err).Msg("dropping inbound frame")
		return
	}
	switch msg.Kind {
	case KindJoin:
		s.guard("join room", func() { s.handleJoin(msg.Nickname) })
	case KindRoll:
		s.guard("roll dice", func() { s.handleRoll(msg.DiceCount) })
	}
}

func (s *Session) handleJoin(nickname string) {
	if err := s.room.Join(s.id, nickname); err != nil {
		s.sendError(errorMessage(err, "join room"))
		return
	}
	s.state = stateJoined
}

func (s *Session) handleRoll(count int) {
	if s.state != stateJoined {
		s.sendError(errorMessage(ErrJoinRequired, "roll dice"))
		return
	}
	if err := s.room.Roll(s.id, count); err != nil {
		s.sendError(errorMessage(err, "roll dice"))
	}
}

// Disconnect ends the session. Safe to call more than once; only the
// first call reaches the room.
func (s *Session) Disconnect() {
	if s.state == stateClosed {
		return
	}
	s.state = stateClosed
	s.room.Disconnect(s.id)
}

// guard keeps a faulted handler from tearing down the connection or the
// process: the panic is logged and the requester gets a generic error.
func (s *Session) guard(action string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("module", "core.session").Str("conn", string(s.id)).Str("action", action).Any("panic", rec).Msg("handler fault")
			s.sendError(fmt.Sprintf("Failed to %s", action))
		}
	}()
	fn()
}

func (s *Session) sendError(message string) {
	if err := s.conn.TrySend(newErrorFrame(message)); err != nil {
		log.Warn().Str("module", "core.session").Str("conn", string(s.id)).Err(err).Msg("error event dropped")
	}
}

// errorMessage maps internal sentinels onto the protocol's client-facing
// strings. Anything unrecognized gets the generic failure text.
func errorMessage(err error, action string) string {
	switch {
	case errors.Is(err, domain.ErrNicknameEmpty):
		return "Nickname is required"
	case errors.Is(err, ErrJoinRequired):
		return "You must join the room first"
	default:
		return fmt.Sprintf("Failed to %s", action)
	}
}
