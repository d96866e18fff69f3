package domain

import (
	"math/rand"
	"time"
)

const (
	MinDice   = 1
	MaxDice   = 10
	DiceSides = 6
)

// DiceRoll is immutable once created. Total is always the sum of Values.
type DiceRoll struct {
	UserID    ConnID `json:"userId"`
	Nickname  string `json:"nickname"`
	Values    []int  `json:"values"`
	Total     int    `json:"total"`
	Timestamp int64  `json:"timestamp"`
}

// ClampDiceCount coerces any requested count into [MinDice, MaxDice].
// Zero (the decoder's value for absent or malformed counts) defaults to
// MinDice. Out-of-range input is clamped, never rejected.
func ClampDiceCount(requested int) int {
	if requested == 0 {
		return MinDice
	}
	if requested < MinDice {
		return MinDice
	}
	if requested > MaxDice {
		return MaxDice
	}
	return requested
}

// Roller produces dice outcomes from a non-cryptographic uniform source.
// The source is injected so tests can seed it.
type Roller struct {
	rng *rand.Rand
}

func NewRoller() *Roller {
	return &Roller{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func NewSeededRoller(seed int64) *Roller {
	return &Roller{rng: rand.New(rand.NewSource(seed))}
}

// RollDice returns count independent values, each uniform in
// [1, DiceSides].
func (r *Roller) RollDice(count int) []int {
	values := make([]int, count)
	for i := range values {
		values[i] = r.rng.Intn(DiceSides) + 1
	}
	return values
}

// NewRoll stamps the outcome with the roller's identity and the current
// wall-clock time in milliseconds.
func NewRoll(user *User, values []int) DiceRoll {
	total := 0
	for _, v := range values {
		total += v
	}
	return DiceRoll{
		UserID:    user.ID,
		Nickname:  user.Nickname,
		Values:    values,
		Total:     total,
		Timestamp: time.Now().UnixMilli(),
	}
}
