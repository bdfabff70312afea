package relay

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/flemzord/bacbot/internal/predict"
	"github.com/flemzord/bacbot/modules/channel/telegram"
)

// formatPrediction renders a prediction post in MarkdownV2.
func formatPrediction(p predict.Prediction, attempts int) string {
	first, last := p.Window(attempts)

	lines := []string{
		"🎯 " + telegram.Bold(fmt.Sprintf("Game #%d", p.Target)),
		telegram.EscapeMarkdownV2(fmt.Sprintf("Suit: %s (%s)", p.Suit.Label(), p.Suit.Name())),
		telegram.EscapeMarkdownV2(fmt.Sprintf("Window: #%d to #%d", first, last)),
		telegram.EscapeMarkdownV2("Status: " + statusText(p)),
	}
	return strings.Join(lines, "\n")
}

func statusText(p predict.Prediction) string {
	switch p.Status {
	case predict.StatusWon:
		return fmt.Sprintf("✅ won on attempt %d", p.Attempt)
	case predict.StatusLost:
		return "❌ lost"
	case predict.StatusExpired:
		return "⌛ expired"
	default:
		return "⏳ pending"
	}
}

// formatStats renders statistics as plain text.
func formatStats(st predict.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Predictions: %d (pending %d)\n", st.Total, st.Pending)
	fmt.Fprintf(&b, "Won: %d  Lost: %d  Expired: %d\n", st.Won, st.Lost, st.Expired)
	fmt.Fprintf(&b, "Win rate: %.1f%%", st.WinRate()*100)

	if len(st.WinsByAttempt) > 0 {
		parts := make([]string, 0, len(st.WinsByAttempt))
		for _, attempt := range slices.Sorted(maps.Keys(st.WinsByAttempt)) {
			parts = append(parts, fmt.Sprintf("#%d: %d", attempt, st.WinsByAttempt[attempt]))
		}
		b.WriteString("\nWins by attempt: " + strings.Join(parts, ", "))
	}
	return b.String()
}

// formatPending renders the pending predictions for /status.
func formatPending(pending []predict.Prediction, attempts int) string {
	if len(pending) == 0 {
		return "No pending prediction."
	}
	var b strings.Builder
	b.WriteString("Pending:")
	for _, p := range pending {
		first, last := p.Window(attempts)
		fmt.Fprintf(&b, "\n  game #%d %s (window #%d-#%d)", p.Target, p.Suit.Label(), first, last)
	}
	return b.String()
}

func formatUptime(d time.Duration) string {
	return d.Truncate(time.Second).String()
}
