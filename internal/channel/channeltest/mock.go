// Package channeltest provides an in-memory Channel for tests.
package channeltest

import (
	"context"
	"fmt"
	"sync"

	"github.com/flemzord/bacbot/internal/channel"
	"github.com/flemzord/bacbot/internal/core"
	"github.com/flemzord/bacbot/pkg/message"
)

// MockChannel is a test double that implements channel.Channel. It records
// sent messages, hands out increasing message IDs, and allows simulating
// inbound messages via SimulateMessage.
type MockChannel struct {
	name      string
	allowList *channel.AllowList

	mu     sync.Mutex
	inbox  channel.Inbox
	sent   []message.OutboundMessage
	nextID int64

	// SendFunc, if set, is called instead of the default recording behavior.
	SendFunc func(ctx context.Context, msg message.OutboundMessage) (int64, error)
}

var _ channel.Channel = (*MockChannel)(nil)

// NewMockChannel creates a MockChannel with the given name and an optional
// allow-list. Pass nil for allowList to deny all messages.
func NewMockChannel(name string, allowList *channel.AllowList) *MockChannel {
	return &MockChannel{
		name:      name,
		allowList: allowList,
		nextID:    100,
	}
}

// ModuleInfo implements core.Module.
func (m *MockChannel) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{ID: core.ModuleID("channel." + m.name)}
}

// Send records the outbound message. New messages get a fresh ID; edits
// return the ID they target. If SendFunc is set, it delegates to it.
func (m *MockChannel) Send(ctx context.Context, msg message.OutboundMessage) (int64, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	if msg.IsEdit() {
		return msg.EditID, nil
	}
	m.nextID++
	return m.nextID, nil
}

// SetInbox stores the inbox callback.
func (m *MockChannel) SetInbox(fn channel.Inbox) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbox = fn
}

// SimulateMessage pushes an inbound message through the allow-list and into
// the inbox. It returns channel.ErrDenied if the sender is not allowed, and
// channel.ErrNoInbox if SetInbox has not been called.
func (m *MockChannel) SimulateMessage(ctx context.Context, msg message.InboundMessage) error {
	m.mu.Lock()
	al := m.allowList
	inbox := m.inbox
	m.mu.Unlock()

	if !al.IsAllowed(msg) {
		return channel.ErrDenied
	}
	if inbox == nil {
		return channel.ErrNoInbox
	}

	msg.Channel = m.name
	return inbox(ctx, msg)
}

// SentMessages returns a copy of all outbound messages recorded by Send.
func (m *MockChannel) SentMessages() []message.OutboundMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]message.OutboundMessage, len(m.sent))
	copy(cp, m.sent)
	return cp
}

// SentTo returns the recorded messages addressed to chatID.
func (m *MockChannel) SentTo(chatID int64) []message.OutboundMessage {
	var out []message.OutboundMessage
	for _, msg := range m.SentMessages() {
		if msg.ChatID == chatID {
			out = append(out, msg)
		}
	}
	return out
}

// Reset clears recorded sent messages.
func (m *MockChannel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}

// String implements fmt.Stringer for test failure output.
func (m *MockChannel) String() string {
	return fmt.Sprintf("MockChannel(%s, %d sent)", m.name, len(m.SentMessages()))
}
