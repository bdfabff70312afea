package channel

import "github.com/flemzord/bacbot/pkg/message"

// AllowList controls which users and chats are permitted to reach the
// relay. An empty or nil AllowList denies everyone.
type AllowList struct {
	users map[int64]struct{}
	chats map[int64]struct{}
}

// NewAllowList creates an AllowList with O(1) lookups. Zero IDs are
// ignored: Telegram never assigns them and config uses 0 for "unset".
func NewAllowList(users, chats []int64) *AllowList {
	a := &AllowList{
		users: make(map[int64]struct{}, len(users)),
		chats: make(map[int64]struct{}, len(chats)),
	}
	for _, u := range users {
		if u != 0 {
			a.users[u] = struct{}{}
		}
	}
	for _, c := range chats {
		if c != 0 {
			a.chats[c] = struct{}{}
		}
	}
	return a
}

// IsAllowed reports whether the message sender or chat is permitted.
//
// Rules:
//   - If both maps are empty → deny (no one is allowed).
//   - If the sender's ID matches a user entry → allow.
//   - If the chat's ID matches a chat entry → allow.
//   - Otherwise → deny.
func (a *AllowList) IsAllowed(msg message.InboundMessage) bool {
	if a == nil || (len(a.users) == 0 && len(a.chats) == 0) {
		return false
	}

	if msg.Sender.ID != 0 {
		if _, ok := a.users[msg.Sender.ID]; ok {
			return true
		}
	}
	if _, ok := a.chats[msg.Chat.ID]; ok {
		return true
	}
	return false
}
