package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/clouddice/dice-server/internal/domain"
)

// Frame is one encoded protocol message.
type Frame []byte

// Sender is the outbound half of a client connection. Owned by the
// adapter; the adapter must Close() it.
type Sender interface {
	TrySend(Frame) error
	Close()
}

var ErrUnknownMessage = errors.New("unknown message type")

// MessageKind enumerates every inbound message so dispatch is a single
// exhaustive switch instead of string-keyed handler lookup.
type MessageKind int

const (
	KindJoin MessageKind = iota + 1
	KindRoll
)

// ClientMessage is the decoded form of an inbound frame.
type ClientMessage struct {
	Kind      MessageKind
	Nickname  string
	DiceCount int
}

// DecodeClientMessage parses the wire envelope. DiceCount arrives as a
// JSON number; fractional values are floored and anything unparseable
// decodes to zero, which the roll engine treats as "use the minimum".
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var env struct {
		Type      string  `json:"type"`
		Nickname  string  `json:"nickname"`
		DiceCount float64 `json:"diceCount"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return ClientMessage{}, fmt.Errorf("decode client message: %w", err)
	}
	switch env.Type {
	case "join":
		return ClientMessage{Kind: KindJoin, Nickname: env.Nickname}, nil
	case "roll":
		return ClientMessage{Kind: KindRoll, DiceCount: floorToInt(env.DiceCount)}, nil
	default:
		return ClientMessage{}, fmt.Errorf("%w: %q", ErrUnknownMessage, env.Type)
	}
}

// floorToInt floors a JSON number and saturates it into int range so the
// conversion is defined for arbitrarily large inputs. The roll engine
// clamps the result into the dice range anyway.
func floorToInt(f float64) int {
	const bound = 1 << 30
	f = math.Floor(f)
	switch {
	case f > bound:
		return bound
	case f < -bound:
		return -bound
	default:
		return int(f)
	}
}

// Snapshot is the room view delivered to a newly joined client.
type Snapshot struct {
	Users       []domain.User     `json:"users"`
	RecentRolls []domain.DiceRoll `json:"recentRolls"`
}

type joinedEvent struct {
	Type        string            `json:"type"`
	UserID      domain.ConnID     `json:"userId"`
	Users       []domain.User     `json:"users"`
	RecentRolls []domain.DiceRoll `json:"recentRolls"`
}

type userJoinedEvent struct {
	Type string      `json:"type"`
	User domain.User `json:"user"`
}

type userLeftEvent struct {
	Type   string        `json:"type"`
	UserID domain.ConnID `json:"userId"`
}

type diceRolledEvent struct {
	Type string          `json:"type"`
	Roll domain.DiceRoll `json:"roll"`
}

type errorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newJoinedFrame(id domain.ConnID, snap Snapshot) Frame {
	return encodeEvent(joinedEvent{
		Type:        "joined",
		UserID:      id,
		Users:       snap.Users,
		RecentRolls: snap.RecentRolls,
	})
}

func newUserJoinedFrame(user domain.User) Frame {
	return encodeEvent(userJoinedEvent{Type: "userJoined", User: user})
}

func newUserLeftFrame(id domain.ConnID) Frame {
	return encodeEvent(userLeftEvent{Type: "userLeft", UserID: id})
}

func newDiceRolledFrame(roll domain.DiceRoll) Frame {
	return encodeEvent(diceRolledEvent{Type: "diceRolled", Roll: roll})
}

func newErrorFrame(message string) Frame {
	return encodeEvent(errorEvent{Type: "error", Message: message})
}

func encodeEvent(v any) Frame {
	b, err := json.Marshal(v)
	if err != nil {
		// Event structs contain only marshalable fields.
		log.Error().Str("module", "core.events").Err(err).Msg("encode event")
		return nil
	}
	return b
}
