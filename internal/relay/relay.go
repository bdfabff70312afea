package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/bacbot/internal/channel"
	"github.com/flemzord/bacbot/internal/core"
	"github.com/flemzord/bacbot/internal/predict"
	"github.com/flemzord/bacbot/pkg/message"
)

// ModuleID is the identifier of the relay module.
const ModuleID core.ModuleID = "relay"

const (
	defaultInboxSize  = 256
	defaultDedupeSize = 1024
	tracerName        = "github.com/flemzord/bacbot/internal/relay"
)

// Compile-time interface guards.
var (
	_ core.Starter = (*Relay)(nil)
	_ core.Stopper = (*Relay)(nil)
)

// Recorder receives relay counters. *gateway.Metrics implements it.
type Recorder interface {
	RecordUpdate(kind string, took time.Duration)
	RecordPrediction(outcome string)
	RecordError(stage string)
}

// Update kinds and prediction outcomes reported to the Recorder.
const (
	kindGame    = "game"
	kindCommand = "command"
	kindIgnored = "ignored"

	stageEngine  = "engine"
	stageSend    = "send"
	stageCommand = "command"
)

type nopRecorder struct{}

func (nopRecorder) RecordUpdate(string, time.Duration) {}
func (nopRecorder) RecordPrediction(string)            {}
func (nopRecorder) RecordError(string)                 {}

// Config holds the relay dependencies and settings.
type Config struct {
	Engine *predict.Engine
	Sender channel.Sender

	// SourceChats are the channels carrying game results. The first one is
	// the primary source: only its games trigger predictions.
	SourceChats []int64

	// PredictionChat receives prediction posts.
	PredictionChat int64

	// AdminID is the only user whose commands are answered. Zero disables
	// commands.
	AdminID int64

	// PendingTTL is how long a prediction may stay pending before
	// ExpirePending marks it expired.
	PendingTTL time.Duration

	InboxSize  int
	DedupeSize int

	Recorder Recorder
	Tracer   trace.Tracer
	Logger   *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.InboxSize <= 0 {
		c.InboxSize = defaultInboxSize
	}
	if c.DedupeSize <= 0 {
		c.DedupeSize = defaultDedupeSize
	}
	if c.Recorder == nil {
		c.Recorder = nopRecorder{}
	}
	if c.Tracer == nil {
		c.Tracer = otel.Tracer(tracerName)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// seenKey identifies a final game reported by one source chat.
type seenKey struct {
	chat int64
	game int
}

// Relay handles inbound updates one at a time, in arrival order, so games
// reach the engine in the order the channel published them.
type Relay struct {
	cfg    Config
	logger *slog.Logger
	seen   *lru.Cache[seenKey, struct{}]

	inbox    chan message.InboundMessage
	inboxMu  sync.RWMutex
	stopped  atomic.Bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once

	startedAt time.Time
}

// New creates a Relay.
func New(cfg Config) (*Relay, error) {
	cfg = cfg.withDefaults()
	if cfg.Engine == nil {
		return nil, ErrNoEngine
	}
	if cfg.Sender == nil {
		return nil, ErrNoSender
	}
	if len(cfg.SourceChats) == 0 {
		return nil, errors.New("relay: at least one source chat is required")
	}
	if cfg.PredictionChat == 0 {
		return nil, errors.New("relay: prediction chat is required")
	}

	seen, err := lru.New[seenKey, struct{}](cfg.DedupeSize)
	if err != nil {
		return nil, fmt.Errorf("relay: dedupe cache: %w", err)
	}

	return &Relay{
		cfg:    cfg,
		logger: cfg.Logger,
		seen:   seen,
		inbox:  make(chan message.InboundMessage, cfg.InboxSize),
	}, nil
}

// ModuleInfo implements core.Module.
func (r *Relay) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{ID: ModuleID}
}

// Start implements core.Starter. It launches the worker draining the inbox.
func (r *Relay) Start() error {
	r.inboxMu.Lock()
	defer r.inboxMu.Unlock()
	if r.stopped.Load() {
		return ErrStopped
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.startedAt = time.Now()

	r.wg.Go(func() {
		for msg := range r.inbox {
			if err := r.Handle(ctx, msg); err != nil {
				r.logger.Error("relay: handling update failed",
					"chat_id", msg.Chat.ID,
					"message_id", msg.ID,
					"error", err,
				)
			}
		}
	})

	r.logger.Info("relay: started",
		"sources", r.cfg.SourceChats,
		"prediction_chat", r.cfg.PredictionChat,
	)
	return nil
}

// Stop implements core.Stopper. Queued updates are drained until ctx is
// done, then the in-flight update is cancelled.
func (r *Relay) Stop(ctx context.Context) error {
	r.stopOnce.Do(func() {
		r.inboxMu.Lock()
		r.stopped.Store(true)
		close(r.inbox)
		cancel := r.cancel
		r.inboxMu.Unlock()

		done := make(chan struct{})
		go func() {
			r.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			if cancel != nil {
				cancel()
			}
			<-done
		}
		if cancel != nil {
			cancel()
		}
		r.logger.Info("relay: stopped")
	})
	return nil
}

// Submit enqueues an update. It matches channel.Inbox and never blocks:
// when the inbox is full the update is dropped.
func (r *Relay) Submit(_ context.Context, msg message.InboundMessage) error {
	r.inboxMu.RLock()
	defer r.inboxMu.RUnlock()

	if r.stopped.Load() {
		return ErrStopped
	}

	select {
	case r.inbox <- msg:
		return nil
	default:
		r.logger.Warn("relay: inbox full, update dropped",
			"chat_id", msg.Chat.ID,
			"message_id", msg.ID,
		)
		return ErrInboxFull
	}
}

// Handle processes one update synchronously.
func (r *Relay) Handle(ctx context.Context, msg message.InboundMessage) error {
	start := time.Now()
	ctx, span := r.cfg.Tracer.Start(ctx, "relay.handle", trace.WithAttributes(
		attribute.Int64("telegram.chat_id", msg.Chat.ID),
		attribute.Int64("telegram.message_id", msg.ID),
		attribute.Bool("telegram.edited", msg.Edited),
	))
	defer span.End()

	kind, err := r.dispatch(ctx, msg)
	span.SetAttributes(attribute.String("relay.kind", kind))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	r.cfg.Recorder.RecordUpdate(kind, time.Since(start))
	return err
}

func (r *Relay) dispatch(ctx context.Context, msg message.InboundMessage) (string, error) {
	if r.isSource(msg.Chat.ID) {
		return r.handleGame(ctx, msg)
	}
	if r.cfg.AdminID != 0 && msg.IsDirectMessage() && msg.Sender.ID == r.cfg.AdminID {
		if cmd, args, ok := msg.Command(); ok {
			return kindCommand, r.handleCommand(ctx, msg, cmd, args)
		}
	}
	return kindIgnored, nil
}

func (r *Relay) isSource(chatID int64) bool {
	return slices.Contains(r.cfg.SourceChats, chatID)
}

func (r *Relay) isPrimary(chatID int64) bool {
	return chatID == r.cfg.SourceChats[0]
}

// ExpirePending marks stale pending predictions expired and updates their
// posts. It returns how many predictions expired.
func (r *Relay) ExpirePending(ctx context.Context) (int, error) {
	ctx, span := r.cfg.Tracer.Start(ctx, "relay.expire_pending")
	defer span.End()

	events, err := r.cfg.Engine.Expire(ctx, r.cfg.PendingTTL)
	if err != nil {
		r.cfg.Recorder.RecordError(stageEngine)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if perr := r.publish(ctx, events); perr != nil {
		err = errors.Join(err, perr)
	}
	return len(events), err
}

// SendReport posts the prediction statistics to the admin. It is a no-op
// when no admin is configured.
func (r *Relay) SendReport(ctx context.Context) error {
	if r.cfg.AdminID == 0 {
		return nil
	}
	st, err := r.cfg.Engine.Stats(ctx)
	if err != nil {
		return fmt.Errorf("relay: report stats: %w", err)
	}
	text := "Daily report\n\n" + formatStats(st)
	if _, err := r.cfg.Sender.Send(ctx, message.NewTextMessage(r.cfg.AdminID, text)); err != nil {
		r.cfg.Recorder.RecordError(stageSend)
		return fmt.Errorf("relay: sending report: %w", err)
	}
	return nil
}

// Uptime returns how long the relay has been running.
func (r *Relay) Uptime() time.Duration {
	r.inboxMu.RLock()
	defer r.inboxMu.RUnlock()
	if r.startedAt.IsZero() {
		return 0
	}
	return time.Since(r.startedAt)
}
