package relay

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/bacbot/internal/game"
	"github.com/flemzord/bacbot/internal/predict"
	"github.com/flemzord/bacbot/pkg/message"
)

// handleGame parses a source post and feeds final results to the engine.
// A game is applied once per source chat even when the post is edited
// again after it became final.
func (r *Relay) handleGame(ctx context.Context, msg message.InboundMessage) (string, error) {
	g, err := game.Parse(msg.Text)
	if err != nil {
		r.logger.Debug("relay: source post is not a game", "chat_id", msg.Chat.ID, "error", err)
		return kindIgnored, nil
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int("game.number", g.Number),
		attribute.Bool("game.final", g.Final),
	)

	if !g.Final {
		return kindIgnored, nil
	}

	key := seenKey{chat: msg.Chat.ID, game: g.Number}
	if r.seen.Contains(key) {
		return kindIgnored, nil
	}

	events, err := r.cfg.Engine.Observe(ctx, g, r.isPrimary(msg.Chat.ID))
	if err != nil {
		r.cfg.Recorder.RecordError(stageEngine)
		// Events applied before the failure still get published.
		return kindGame, errors.Join(err, r.publish(ctx, events))
	}
	r.seen.Add(key, struct{}{})

	r.logger.Debug("relay: game applied",
		"chat_id", msg.Chat.ID,
		"game", g.Number,
		"events", len(events),
	)
	return kindGame, r.publish(ctx, events)
}

// publish posts new predictions and edits the posts of resolved ones.
func (r *Relay) publish(ctx context.Context, events []predict.Event) error {
	attempts := r.cfg.Engine.Config().Attempts

	var errs []error
	for _, ev := range events {
		p := ev.Prediction
		r.cfg.Recorder.RecordPrediction(outcome(ev))

		out := message.NewMarkdownMessage(r.cfg.PredictionChat, formatPrediction(p, attempts))
		if ev.Kind == predict.EventResolved {
			r.logger.Info("relay: prediction resolved",
				"target", p.Target,
				"suit", p.Suit.Name(),
				"status", p.Status,
				"attempt", p.Attempt,
			)
			out.EditID = p.MessageID
		} else {
			r.logger.Info("relay: prediction created",
				"target", p.Target,
				"suit", p.Suit.Name(),
				"source_game", p.SourceGame,
			)
		}

		id, err := r.cfg.Sender.Send(ctx, out)
		if err != nil {
			r.cfg.Recorder.RecordError(stageSend)
			errs = append(errs, fmt.Errorf("relay: posting prediction for game %d: %w", p.Target, err))
			continue
		}
		if out.IsEdit() {
			continue
		}
		if err := r.cfg.Engine.AttachMessage(ctx, p.ID, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func outcome(ev predict.Event) string {
	if ev.Kind == predict.EventCreated {
		return "created"
	}
	return string(ev.Prediction.Status)
}
