package relay

import (
	"context"
	"fmt"

	"github.com/flemzord/bacbot/pkg/message"
)

const helpText = `Commands:
/status - pending prediction and uptime
/stats - prediction statistics
/reset - delete every prediction
/help - this message`

// handleCommand answers an admin command in the admin's private chat.
func (r *Relay) handleCommand(ctx context.Context, msg message.InboundMessage, cmd, _ string) error {
	var reply string
	switch cmd {
	case "start":
		reply = "Bacbot is running.\n\n" + helpText
	case "help":
		reply = helpText
	case "status":
		pending, err := r.cfg.Engine.Store().Pending(ctx)
		if err != nil {
			r.cfg.Recorder.RecordError(stageCommand)
			return fmt.Errorf("relay: /status: %w", err)
		}
		reply = fmt.Sprintf("Uptime: %s\nSources: %v\nPrediction channel: %d\n\n%s",
			formatUptime(r.Uptime()), r.cfg.SourceChats, r.cfg.PredictionChat,
			formatPending(pending, r.cfg.Engine.Config().Attempts))
	case "stats":
		st, err := r.cfg.Engine.Stats(ctx)
		if err != nil {
			r.cfg.Recorder.RecordError(stageCommand)
			return fmt.Errorf("relay: /stats: %w", err)
		}
		reply = formatStats(st)
	case "reset":
		if err := r.cfg.Engine.Reset(ctx); err != nil {
			r.cfg.Recorder.RecordError(stageCommand)
			return fmt.Errorf("relay: /reset: %w", err)
		}
		r.seen.Purge()
		r.logger.Warn("relay: predictions reset by admin", "admin_id", msg.Sender.ID)
		reply = "All predictions deleted."
	default:
		reply = fmt.Sprintf("Unknown command /%s.\n\n%s", cmd, helpText)
	}

	if _, err := r.cfg.Sender.Send(ctx, message.NewTextMessage(msg.Chat.ID, reply)); err != nil {
		r.cfg.Recorder.RecordError(stageSend)
		return fmt.Errorf("relay: replying to /%s: %w", cmd, err)
	}
	return nil
}
