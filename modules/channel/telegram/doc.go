// Package telegram implements the Telegram Bot API channel for bacbot.
//
// It bridges Telegram and the platform-agnostic message model:
//
//   - Inbound conversion of messages and channel posts, including edits
//   - Outbound sendMessage / editMessageText with chunking via
//     channel.SplitMessage and a posts-per-minute throttle
//   - Long-polling delivery with a circuit breaker on repeated failures
//   - MarkdownV2 escaping
//
// No external Telegram library is used. The module communicates with the
// Bot API via raw net/http + encoding/json.
package telegram
