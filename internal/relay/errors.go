// Package relay connects the Telegram channel to the prediction engine:
// it reads game results from the source channels, publishes predictions to
// the prediction channel and answers admin commands.
package relay

import "errors"

// Sentinel errors for relay operations.
var (
	// ErrInboxFull indicates the inbox is at capacity and the update was
	// dropped.
	ErrInboxFull = errors.New("relay: inbox full, update dropped")

	// ErrStopped indicates the relay no longer accepts updates.
	ErrStopped = errors.New("relay: stopped")

	ErrNoEngine = errors.New("relay: no engine configured")
	ErrNoSender = errors.New("relay: no sender configured")
)
