package telegram

import (
	"fmt"
	"strings"
)

// Update represents an incoming update from the Telegram Bot API.
type Update struct {
	UpdateID          int      `json:"update_id"`
	Message           *Message `json:"message,omitempty"`
	EditedMessage     *Message `json:"edited_message,omitempty"`
	ChannelPost       *Message `json:"channel_post,omitempty"`
	EditedChannelPost *Message `json:"edited_channel_post,omitempty"`
}

// Message represents a Telegram message.
type Message struct {
	MessageID  int    `json:"message_id"`
	From       *User  `json:"from,omitempty"`
	SenderChat *Chat  `json:"sender_chat,omitempty"`
	Chat       Chat   `json:"chat"`
	Date       int    `json:"date"`
	EditDate   int    `json:"edit_date,omitempty"`
	Text       string `json:"text,omitempty"`
	Caption    string `json:"caption,omitempty"`
}

// Chat represents a Telegram chat.
type Chat struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// User represents a Telegram user or bot.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// APIResponse is the generic wrapper returned by the Telegram Bot API.
type APIResponse[T any] struct {
	OK          bool                `json:"ok"`
	Result      T                   `json:"result"`
	Description string              `json:"description,omitempty"`
	ErrorCode   int                 `json:"error_code,omitempty"`
	Parameters  *ResponseParameters `json:"parameters,omitempty"`
}

// ResponseParameters contains information about why a request was unsuccessful.
type ResponseParameters struct {
	RetryAfter int `json:"retry_after,omitempty"`
}

// APIError represents an error returned by the Telegram Bot API.
type APIError struct {
	Method      string `json:"-"`
	Code        int    `json:"error_code"`
	Description string `json:"description"`
	RetryAfter  int    `json:"retry_after,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	prefix := "telegram: "
	if e.Method != "" {
		prefix += e.Method + ": "
	}
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s%d %s (retry after %ds)", prefix, e.Code, e.Description, e.RetryAfter)
	}
	return fmt.Sprintf("%s%d %s", prefix, e.Code, e.Description)
}

// NotModified reports whether an edit was rejected because the new text
// equals the current one.
func (e *APIError) NotModified() bool {
	return e.Code == 400 && strings.Contains(e.Description, "message is not modified")
}

// Unauthorized reports whether the bot token was rejected.
func (e *APIError) Unauthorized() bool {
	return e.Code == 401
}
