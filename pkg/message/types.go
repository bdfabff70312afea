// Package message defines the platform-agnostic data contract between the
// Telegram channel and the relay.
package message

// ChatType indicates the kind of conversation.
type ChatType string

const (
	// ChatDM is a direct (one-to-one) conversation.
	ChatDM ChatType = "dm"
	// ChatGroup is a multi-participant group conversation.
	ChatGroup ChatType = "group"
	// ChatBroadcast is a one-to-many broadcast channel.
	ChatBroadcast ChatType = "broadcast"
)

// Sender identifies the author of an inbound message. Channel posts have no
// author and carry a zero Sender.
type Sender struct {
	ID          int64  `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID    int64    `json:"id"`
	Type  ChatType `json:"type"`
	Title string   `json:"title,omitempty"`
}

// IsGroup reports whether the chat is a group conversation.
func (c Chat) IsGroup() bool {
	return c.Type == ChatGroup
}

// IsDirectMessage reports whether the chat is a direct message.
func (c Chat) IsDirectMessage() bool {
	return c.Type == ChatDM
}

// IsBroadcast reports whether the chat is a broadcast channel.
func (c Chat) IsBroadcast() bool {
	return c.Type == ChatBroadcast
}
