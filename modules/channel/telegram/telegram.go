package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/flemzord/bacbot/internal/channel"
	"github.com/flemzord/bacbot/internal/core"
	"github.com/flemzord/bacbot/internal/gateway"
	"github.com/flemzord/bacbot/pkg/message"
)

// ModuleID is the module identifier of the Telegram channel.
const ModuleID core.ModuleID = "channel.telegram"

const (
	startupTimeout = 30 * time.Second
	postBurst      = 3
)

// Compile-time interface guards.
var (
	_ channel.Channel       = (*Telegram)(nil)
	_ core.Provisioner      = (*Telegram)(nil)
	_ core.Validator        = (*Telegram)(nil)
	_ core.Starter          = (*Telegram)(nil)
	_ core.Stopper          = (*Telegram)(nil)
	_ gateway.HealthChecker = (*Telegram)(nil)
)

// Telegram implements the Telegram Bot API channel.
type Telegram struct {
	config    Config
	client    *Client
	logger    *slog.Logger
	allowList *channel.AllowList
	limiter   *rate.Limiter
	inbox     channel.Inbox

	mu      sync.Mutex
	botUser *User
	poller  *Poller
}

// New returns an unprovisioned Telegram channel.
func New() *Telegram {
	return &Telegram{}
}

// ModuleInfo implements core.Module.
func (t *Telegram) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{ID: ModuleID}
}

// Provision implements core.Provisioner.
func (t *Telegram) Provision(ctx *core.AppContext) error {
	if ctx.Config == nil {
		return errors.New("telegram: configuration missing")
	}
	t.config = configFrom(ctx.Config)
	t.logger = ctx.Logger
	t.client = NewClient(t.config.Token, t.config.APIURL)
	t.allowList = channel.NewAllowList(t.config.AllowUsers, t.config.AllowChats)
	t.limiter = newPostLimiter(t.config.PostsPerMinute)
	return nil
}

// newPostLimiter spaces outgoing posts; zero disables throttling.
func newPostLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), postBurst)
}

// Validate implements core.Validator.
func (t *Telegram) Validate() error {
	return t.config.validate()
}

// Start implements core.Starter. It authenticates the bot token, clears any
// webhook so long polling works, then starts the poller.
func (t *Telegram) Start() error {
	if t.inbox == nil {
		return errors.New("telegram: inbox not set, call SetInbox before Start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	user, err := t.client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram: getMe failed (check token): %w", err)
	}
	t.logger.Info("telegram bot authenticated",
		"id", user.ID,
		"username", user.Username,
	)

	if err := t.client.DeleteWebhook(ctx, false); err != nil {
		return fmt.Errorf("telegram: deleteWebhook failed: %w", err)
	}

	poller := NewPoller(t.client, t.inbox, t.allowList, t.logger, string(ModuleID), t.config)
	t.mu.Lock()
	t.botUser = user
	t.poller = poller
	t.mu.Unlock()

	poller.Start()
	t.logger.Info("telegram polling started",
		"timeout", t.config.PollingTimeout,
		"chats", t.config.AllowChats,
	)
	return nil
}

// Stop implements core.Stopper.
func (t *Telegram) Stop(_ context.Context) error {
	t.mu.Lock()
	poller := t.poller
	t.poller = nil
	t.mu.Unlock()

	if poller != nil {
		t.logger.Info("telegram channel stopping")
		poller.Stop()
	}
	return nil
}

// SetInbox implements channel.Channel.
func (t *Telegram) SetInbox(fn channel.Inbox) {
	t.inbox = fn
}

// BotUser returns the authenticated bot account, or nil before Start.
func (t *Telegram) BotUser() *User {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.botUser
}

// Send implements channel.Channel. Long texts are split; the ID of the
// first delivered chunk is returned. Edits whose text did not change
// succeed without a request error.
func (t *Telegram) Send(ctx context.Context, msg message.OutboundMessage) (int64, error) {
	var firstID int64
	for i, chunk := range channel.SplitMessage(msg, channel.ChunkConfig{MaxLength: t.config.MaxMessageLength}) {
		if err := t.limiter.Wait(ctx); err != nil {
			return firstID, fmt.Errorf("telegram: waiting for send slot: %w", err)
		}

		id, err := t.sendOne(ctx, chunk)
		if err != nil {
			return firstID, err
		}
		if i == 0 {
			firstID = id
		}
	}
	return firstID, nil
}

func (t *Telegram) sendOne(ctx context.Context, msg message.OutboundMessage) (int64, error) {
	var disablePreview bool
	if msg.Hints != nil {
		disablePreview = msg.Hints.DisablePreview
	}

	if msg.IsEdit() {
		_, err := t.client.EditMessageText(ctx, EditMessageTextRequest{
			ChatID:                msg.ChatID,
			MessageID:             int(msg.EditID),
			Text:                  msg.Text,
			ParseMode:             msg.ParseMode(),
			DisableWebPagePreview: disablePreview,
		})
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.NotModified() {
			return msg.EditID, nil
		}
		if err != nil {
			return 0, err
		}
		return msg.EditID, nil
	}

	req := SendMessageRequest{
		ChatID:                msg.ChatID,
		Text:                  msg.Text,
		ParseMode:             msg.ParseMode(),
		DisableWebPagePreview: disablePreview,
	}
	if msg.Hints != nil {
		req.DisableNotification = msg.Hints.DisableNotification
	}
	sent, err := t.client.SendMessage(ctx, req)
	if err != nil {
		return 0, err
	}
	return int64(sent.MessageID), nil
}

// Health implements gateway.HealthChecker. The channel is unavailable
// before Start and while the poller is failing.
func (t *Telegram) Health(_ context.Context) gateway.ComponentStatus {
	status := gateway.ComponentStatus{Name: string(ModuleID)}

	t.mu.Lock()
	poller := t.poller
	t.mu.Unlock()

	if poller == nil {
		status.Detail = "not polling"
		return status
	}

	stats := poller.Stats()
	switch {
	case stats.Paused:
		status.Detail = "polling paused after repeated errors"
	case stats.ConsecutiveErrors > 0:
		status.Available = true
		status.Detail = fmt.Sprintf("%d consecutive polling errors", stats.ConsecutiveErrors)
	default:
		status.Available = true
	}
	if !stats.LastPoll.IsZero() {
		status.LastSeen = stats.LastPoll
	}
	return status
}
