package message

// ParseMode values understood by Telegram.
const (
	ParseModeNone       = ""
	ParseModeMarkdownV2 = "MarkdownV2"
)

// OutboundMessage represents a message to be sent through a channel.
type OutboundMessage struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`

	// EditID, when non-zero, turns the delivery into an edit of that
	// previously sent message.
	EditID int64 `json:"edit_id,omitempty"`

	Hints *OutboundHints `json:"hints,omitempty"`
}

// OutboundHints carries optional delivery hints for channels.
// Zero value means no hints are set.
type OutboundHints struct {
	DisablePreview      bool   `json:"disable_preview,omitempty"`
	DisableNotification bool   `json:"disable_notification,omitempty"`
	ParseMode           string `json:"parse_mode,omitempty"`
}

// NewTextMessage creates a plain outbound text message.
func NewTextMessage(chatID int64, text string) OutboundMessage {
	return OutboundMessage{ChatID: chatID, Text: text}
}

// NewMarkdownMessage creates an outbound message rendered as MarkdownV2.
// The caller is responsible for escaping.
func NewMarkdownMessage(chatID int64, text string) OutboundMessage {
	return OutboundMessage{
		ChatID: chatID,
		Text:   text,
		Hints:  &OutboundHints{ParseMode: ParseModeMarkdownV2, DisablePreview: true},
	}
}

// IsEdit reports whether the message replaces an existing one.
func (m *OutboundMessage) IsEdit() bool {
	return m.EditID != 0
}

// ParseMode returns the requested parse mode, or ParseModeNone.
func (m *OutboundMessage) ParseMode() string {
	if m.Hints == nil {
		return ParseModeNone
	}
	return m.Hints.ParseMode
}
