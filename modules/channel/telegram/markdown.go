package telegram

import "strings"

// markdownV2SpecialChars lists all characters that must be escaped in Telegram MarkdownV2.
var markdownV2SpecialChars = strings.NewReplacer(
	`\`, `\\`,
	`_`, `\_`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`(`, `\(`,
	`)`, `\)`,
	`~`, `\~`,
	"`", "\\`",
	`>`, `\>`,
	`#`, `\#`,
	`+`, `\+`,
	`-`, `\-`,
	`=`, `\=`,
	`|`, `\|`,
	`{`, `\{`,
	`}`, `\}`,
	`.`, `\.`,
	`!`, `\!`,
)

// EscapeMarkdownV2 escapes all special characters for Telegram MarkdownV2 format.
// Special chars: \ _ * [ ] ( ) ~ ` > # + - = | { } . !
func EscapeMarkdownV2(text string) string {
	return markdownV2SpecialChars.Replace(text)
}

// Bold wraps escaped text in MarkdownV2 bold markers.
func Bold(text string) string {
	return "*" + EscapeMarkdownV2(text) + "*"
}

// Code wraps text in a MarkdownV2 inline code span. Only ` and \ need
// escaping inside it.
func Code(text string) string {
	r := strings.NewReplacer(`\`, `\\`, "`", "\\`")
	return "`" + r.Replace(text) + "`"
}
