package message

import (
	"strings"
	"time"
)

// InboundMessage represents a message received from a channel.
type InboundMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Channel   string    `json:"channel"`
	Sender    Sender    `json:"sender"`
	Chat      Chat      `json:"chat"`
	Text      string    `json:"text"`

	// Edited is set when the platform delivered a new revision of a message
	// it had already delivered.
	Edited bool `json:"edited,omitempty"`
}

// IsGroup reports whether the message was sent in a group chat.
func (m *InboundMessage) IsGroup() bool {
	return m.Chat.IsGroup()
}

// IsDirectMessage reports whether the message is a direct message.
func (m *InboundMessage) IsDirectMessage() bool {
	return m.Chat.IsDirectMessage()
}

// Command returns the bot command at the start of the text, lowercased and
// without its leading slash or @botname suffix, plus the remaining
// arguments. ok is false when the text is not a command.
func (m *InboundMessage) Command() (cmd, args string, ok bool) {
	text := strings.TrimSpace(m.Text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}
