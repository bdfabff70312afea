package telegram

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flemzord/bacbot/internal/channel"
)

const (
	maxConsecutivePollingErrors = 5
	errorPauseDuration          = 30 * time.Second
)

// Poller implements long-polling for receiving Telegram updates.
type Poller struct {
	client      *Client
	inbox       channel.Inbox
	allowList   *channel.AllowList
	logger      *slog.Logger
	channelName string
	config      Config

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once

	lastPoll          atomic.Int64 // unix nanos of the last successful getUpdates
	consecutiveErrors atomic.Int32
	paused            atomic.Bool
}

// PollerStats is a point-in-time view of the polling loop.
type PollerStats struct {
	LastPoll          time.Time
	ConsecutiveErrors int
	Paused            bool
}

// NewPoller creates a new Poller.
func NewPoller(client *Client, inbox channel.Inbox, allowList *channel.AllowList, logger *slog.Logger, channelName string, config Config) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		client:      client,
		inbox:       inbox,
		allowList:   allowList,
		logger:      logger,
		channelName: channelName,
		config:      config,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// Start launches the polling loop in a goroutine.
func (p *Poller) Start() {
	go p.loop()
}

// Stop cancels the in-flight request and waits for the loop to finish.
// It is safe to call Stop multiple times.
func (p *Poller) Stop() {
	p.stopOnce.Do(p.cancel)
	<-p.done
}

// Stats returns the current polling statistics.
func (p *Poller) Stats() PollerStats {
	s := PollerStats{
		ConsecutiveErrors: int(p.consecutiveErrors.Load()),
		Paused:            p.paused.Load(),
	}
	if ns := p.lastPoll.Load(); ns != 0 {
		s.LastPoll = time.Unix(0, ns)
	}
	return s
}

// loop runs the long-polling loop until Stop() is called.
func (p *Poller) loop() {
	defer close(p.done)

	var offset int

	for p.ctx.Err() == nil {
		updates, err := p.client.GetUpdates(p.ctx, GetUpdatesRequest{
			Offset:         offset,
			Timeout:        p.config.PollingTimeout,
			AllowedUpdates: p.config.AllowedUpdates,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || p.ctx.Err() != nil {
				return
			}
			n := p.consecutiveErrors.Add(1)
			p.logger.Error("polling getUpdates failed",
				"error", err,
				"consecutive_errors", n,
			)

			if n >= maxConsecutivePollingErrors {
				p.logger.Warn("polling paused after consecutive errors",
					"pause", errorPauseDuration,
				)
				p.paused.Store(true)
				select {
				case <-p.ctx.Done():
					return
				case <-time.After(errorPauseDuration):
				}
				p.paused.Store(false)
				p.consecutiveErrors.Store(0)
			}
			continue
		}

		p.consecutiveErrors.Store(0)
		p.lastPoll.Store(time.Now().UnixNano())

		for _, update := range updates {
			offset = update.UpdateID + 1
			p.handleUpdate(&update)
		}
	}
}

// handleUpdate processes a single update.
func (p *Poller) handleUpdate(update *Update) {
	msg, err := convertInbound(update, p.channelName)
	if err != nil {
		p.logger.Debug("skipping update", "update_id", update.UpdateID, "reason", err)
		return
	}

	if !p.allowList.IsAllowed(msg) {
		p.logger.Debug("update denied by allow list",
			"update_id", update.UpdateID,
			"sender", msg.Sender.ID,
			"chat", msg.Chat.ID,
		)
		return
	}

	if err := p.inbox(p.ctx, msg); err != nil {
		p.logger.Error("failed to deliver update to inbox",
			"update_id", update.UpdateID,
			"error", err,
		)
	}
}
