package telegram

import (
	"fmt"
	"time"

	"github.com/flemzord/bacbot/pkg/message"
)

// convertInbound transforms a Telegram Update into a platform-agnostic InboundMessage.
func convertInbound(update *Update, channelName string) (message.InboundMessage, error) {
	msg, edited := extractMessage(update)
	if msg == nil {
		return message.InboundMessage{}, fmt.Errorf("telegram: update %d contains no message", update.UpdateID)
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if text == "" {
		return message.InboundMessage{}, fmt.Errorf("telegram: update %d carries no text", update.UpdateID)
	}

	ts := msg.Date
	if edited && msg.EditDate != 0 {
		ts = msg.EditDate
	}

	return message.InboundMessage{
		ID:        int64(msg.MessageID),
		Timestamp: time.Unix(int64(ts), 0),
		Channel:   channelName,
		Sender:    convertSender(msg.From),
		Chat:      convertChat(msg.Chat),
		Text:      text,
		Edited:    edited,
	}, nil
}

// extractMessage returns the message carried by an Update and whether it
// is an edit.
func extractMessage(update *Update) (*Message, bool) {
	switch {
	case update.Message != nil:
		return update.Message, false
	case update.ChannelPost != nil:
		return update.ChannelPost, false
	case update.EditedChannelPost != nil:
		return update.EditedChannelPost, true
	case update.EditedMessage != nil:
		return update.EditedMessage, true
	}
	return nil, false
}

// convertSender maps a Telegram User to a platform-agnostic Sender.
func convertSender(user *User) message.Sender {
	if user == nil {
		return message.Sender{}
	}
	displayName := user.FirstName
	if user.LastName != "" {
		displayName += " " + user.LastName
	}
	return message.Sender{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: displayName,
	}
}

// convertChat maps a Telegram Chat to a platform-agnostic Chat.
func convertChat(chat Chat) message.Chat {
	return message.Chat{
		ID:    chat.ID,
		Type:  mapChatType(chat.Type),
		Title: chat.Title,
	}
}

// mapChatType converts Telegram chat type strings to message.ChatType.
func mapChatType(tgType string) message.ChatType {
	switch tgType {
	case "private":
		return message.ChatDM
	case "channel":
		return message.ChatBroadcast
	default:
		return message.ChatGroup
	}
}
