// Package channel defines the bridge between a messaging platform and the
// relay. It provides the Channel interface, message chunking and
// allow-list filtering.
package channel

import (
	"context"

	"github.com/flemzord/bacbot/internal/core"
	"github.com/flemzord/bacbot/pkg/message"
)

// Inbox receives inbound messages that passed the allow-list.
type Inbox func(ctx context.Context, msg message.InboundMessage) error

// Channel is the bridge between a messaging platform and the relay.
//
// A channel receives messages from its platform, checks the allow-list, and
// pushes them to the relay via the inbox callback. It also delivers outbound
// messages produced by the relay via Send().
type Channel interface {
	core.Module

	// Send delivers an outbound message to the platform and returns the
	// platform's ID for it. Edits return the ID of the edited message.
	Send(ctx context.Context, msg message.OutboundMessage) (int64, error)

	// SetInbox gives the channel a function to push inbound messages to the
	// relay. Called during wiring, before Start().
	SetInbox(fn Inbox)
}

// Sender is the outbound half of Channel.
type Sender interface {
	Send(ctx context.Context, msg message.OutboundMessage) (int64, error)
}
