// Package predict turns observed baccarat results into suit predictions
// and tracks whether they come true.
package predict

import (
	"time"

	"github.com/flemzord/bacbot/internal/suit"
)

// Status is the lifecycle state of a prediction.
type Status string

// Prediction statuses. Only StatusPending is non-terminal.
const (
	StatusPending Status = "pending"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
	StatusExpired Status = "expired"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusWon, StatusLost, StatusExpired:
		return true
	}
	return false
}

// Terminal reports whether s is a resolved status.
func (s Status) Terminal() bool {
	return s.Valid() && s != StatusPending
}

// Prediction is a claim that Suit appears in the player hand of game Target
// or one of the following attempts.
type Prediction struct {
	ID         int64
	Target     int
	Suit       suit.Suit
	SourceGame int
	Status     Status

	// Attempt is the 1-based attempt that settled the prediction: the game
	// that carried the suit for a win, the last game checked for a loss.
	Attempt int

	// MessageID is the post announcing the prediction in the prediction
	// channel, 0 until it has been sent.
	MessageID int64

	CreatedAt  time.Time
	ResolvedAt time.Time
}

// Window returns the first and last game numbers that can settle p when
// attempts games are checked.
func (p Prediction) Window(attempts int) (first, last int) {
	return p.Target, p.Target + attempts - 1
}

// Stats summarises stored predictions.
type Stats struct {
	Total   int
	Pending int
	Won     int
	Lost    int
	Expired int

	// WinsByAttempt counts wins per settling attempt (1-based).
	WinsByAttempt map[int]int
}

// WinRate is the share of won predictions among won and lost ones, in
// [0, 1]. Expired predictions are not counted.
func (s Stats) WinRate() float64 {
	decided := s.Won + s.Lost
	if decided == 0 {
		return 0
	}
	return float64(s.Won) / float64(decided)
}
