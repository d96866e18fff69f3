// Package domain contains the room entities and their validation rules,
// no transport or storage logic.
package domain

import (
	"errors"
	"strings"
)

const (
	MinNicknameLen = 1
	MaxNicknameLen = 20
)

var ErrNicknameEmpty = errors.New("nickname is required")

// ConnID is the opaque identity of one live client connection. It is
// assigned by the transport layer and never reused while that connection
// is open.
type ConnID string

type User struct {
	ID       ConnID `json:"id"`
	Nickname string `json:"nickname"`
}

// SanitizeNickname trims surrounding whitespace and truncates to
// MaxNicknameLen. An empty or all-whitespace nickname is rejected.
func SanitizeNickname(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrNicknameEmpty
	}
	if runes := []rune(trimmed); len(runes) > MaxNicknameLen {
		trimmed = string(runes[:MaxNicknameLen])
	}
	return trimmed, nil
}

// NewUser sanitizes the nickname and builds the record keyed by the
// connection identity. Keeps ad-hoc struct literals out of adapters.
func NewUser(id ConnID, nickname string) (*User, error) {
	clean, err := SanitizeNickname(nickname)
	if err != nil {
		return nil, err
	}
	return &User{ID: id, Nickname: clean}, nil
}
