package channel

import (
	"strings"
	"unicode/utf8"

	"github.com/flemzord/bacbot/pkg/message"
)

// TelegramMaxLength is the Bot API limit on message text, in UTF-16 code
// units. Counting bytes stays on the safe side of it.
const TelegramMaxLength = 4096

// ChunkConfig controls how outbound messages are split when they exceed
// a platform's maximum message length.
type ChunkConfig struct {
	// MaxLength is the maximum number of bytes per chunk.
	// A value <= 0 means no splitting.
	MaxLength int
}

// SplitMessage splits an outbound message into messages that each respect
// cfg.MaxLength. Edits are never split: only the first chunk would fit the
// edited message, so the text is truncated instead.
func SplitMessage(msg message.OutboundMessage, cfg ChunkConfig) []message.OutboundMessage {
	if cfg.MaxLength <= 0 || len(msg.Text) <= cfg.MaxLength {
		return []message.OutboundMessage{msg}
	}

	chunks := splitText(msg.Text, cfg.MaxLength)
	if msg.IsEdit() {
		msg.Text = chunks[0]
		return []message.OutboundMessage{msg}
	}

	result := make([]message.OutboundMessage, 0, len(chunks))
	for _, chunk := range chunks {
		out := msg
		out.Text = chunk
		result = append(result, out)
	}
	return result
}

// splitText breaks text into chunks of at most maxLen bytes, preferring
// line boundaries.
func splitText(text string, maxLen int) []string {
	var chunks []string
	var current strings.Builder

	for line := range strings.SplitSeq(text, "\n") {
		lineWithNewline := line + "\n"

		if current.Len()+len(lineWithNewline) > maxLen {
			if current.Len() > 0 {
				chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
				current.Reset()
			}

			// If a single line exceeds maxLen, force-split it.
			if len(lineWithNewline) > maxLen {
				chunks = append(chunks, forceSplit(line, maxLen)...)
				continue
			}
		}

		current.WriteString(lineWithNewline)
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
	}

	return chunks
}

// forceSplit breaks a single long line into chunks of at most maxLen bytes
// without cutting a multi-byte rune.
func forceSplit(line string, maxLen int) []string {
	var parts []string
	for len(line) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		if cut == 0 {
			_, cut = utf8.DecodeRuneInString(line)
		}
		parts = append(parts, line[:cut])
		line = line[cut:]
	}
	if len(line) > 0 {
		parts = append(parts, line)
	}
	return parts
}
