package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/flemzord/bacbot/internal/config"
	"github.com/flemzord/bacbot/internal/core"
	"github.com/flemzord/bacbot/pkg/message"
)

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		c := Config{Token: "123456:ABC-DEF_ghijk", AllowChats: []int64{sourceChat}}
		c.defaults()
		return c
	}

	if cfg := valid(); cfg.validate() != nil {
		t.Fatalf("valid config rejected: %v", cfg.validate())
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty token", func(c *Config) { c.Token = "" }},
		{"placeholder token", func(c *Config) { c.Token = config.PlaceholderBotToken }},
		{"malformed token", func(c *Config) { c.Token = "invalid-token" }},
		{"bad api url", func(c *Config) { c.APIURL = "not-a-url" }},
		{"polling timeout", func(c *Config) { c.PollingTimeout = 60 }},
		{"message length", func(c *Config) { c.MaxMessageLength = 10000 }},
		{"posts per minute", func(c *Config) { c.PostsPerMinute = -1 }},
		{"no chats", func(c *Config) { c.AllowChats = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			if err := cfg.validate(); err == nil {
				t.Error("validate() should fail")
			}
		})
	}
}

func TestConfigFrom(t *testing.T) {
	cfg, err := config.Load(config.Options{Environment: map[string]string{
		"BOT_TOKEN":        "123:abc",
		"ADMIN_ID":         "42",
		"POLLING_TIMEOUT":  "10",
		"POSTS_PER_MINUTE": "0",
	}})
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	c := configFrom(cfg)
	if c.Token != "123:abc" || c.PollingTimeout != 10 || c.PostsPerMinute != 0 {
		t.Errorf("unexpected config: %+v", c)
	}
	if len(c.AllowUsers) != 1 || c.AllowUsers[0] != 42 {
		t.Errorf("AllowUsers = %v, want [42]", c.AllowUsers)
	}
	if len(c.AllowChats) != 2 {
		t.Errorf("AllowChats = %v, want both source channels", c.AllowChats)
	}
	for _, id := range c.AllowChats {
		if id == cfg.PredictionChannelID.Int64() {
			t.Error("prediction channel must not be an inbound chat")
		}
	}
	if c.MaxMessageLength != 4096 {
		t.Errorf("MaxMessageLength = %d, want 4096", c.MaxMessageLength)
	}
}

// fakeBotAPI is an httptest-backed Bot API that serves one channel post and
// records sends and edits.
type fakeBotAPI struct {
	t *testing.T

	mu     sync.Mutex
	served bool
	sent   []SendMessageRequest
	edits  []EditMessageTextRequest
	nextID int
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		writeJSON(f.t, w, APIResponse[User]{OK: true, Result: User{ID: 111, IsBot: true, Username: "bac_bot"}})

	case strings.HasSuffix(r.URL.Path, "/deleteWebhook"):
		writeJSON(f.t, w, APIResponse[bool]{OK: true, Result: true})

	case strings.HasSuffix(r.URL.Path, "/getUpdates"):
		if !f.served {
			f.served = true
			writeJSON(f.t, w, APIResponse[[]Update]{OK: true, Result: []Update{{
				UpdateID: 1,
				ChannelPost: &Message{
					MessageID: 500,
					Chat:      Chat{ID: sourceChat, Type: "channel"},
					Text:      "#N20. 9(4♠️5♥️) - 2(K♦️2♣️)",
					Date:      int(time.Now().Unix()),
				},
			}}})
			return
		}
		writeJSON(f.t, w, APIResponse[[]Update]{OK: true, Result: []Update{}})
		time.Sleep(20 * time.Millisecond)

	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		var req SendMessageRequest
		_ = json.Unmarshal(body, &req)
		f.sent = append(f.sent, req)
		f.nextID++
		writeJSON(f.t, w, APIResponse[Message]{OK: true, Result: Message{MessageID: f.nextID, Chat: Chat{ID: req.ChatID}}})

	case strings.HasSuffix(r.URL.Path, "/editMessageText"):
		var req EditMessageTextRequest
		_ = json.Unmarshal(body, &req)
		f.edits = append(f.edits, req)
		if len(f.edits) > 1 {
			writeJSON(f.t, w, APIResponse[json.RawMessage]{OK: false, ErrorCode: 400, Description: "Bad Request: message is not modified"})
			return
		}
		writeJSON(f.t, w, APIResponse[Message]{OK: true, Result: Message{MessageID: req.MessageID}})

	default:
		f.t.Errorf("unexpected request: %s", r.URL.Path)
	}
}

func newProvisionedTelegram(t *testing.T, apiURL string) *Telegram {
	t.Helper()
	cfg, err := config.Load(config.Options{Environment: map[string]string{
		"BOT_TOKEN":        "123456:test-token",
		"TELEGRAM_API_URL": apiURL,
		"POLLING_TIMEOUT":  "0",
		"POSTS_PER_MINUTE": "0",
	}})
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	tg := New()
	if err := tg.Provision(core.NewAppContext(discardLogger(), cfg)); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if err := tg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return tg
}

// TestLifecycle exercises Provision → Validate → Start → inbound post →
// outbound send and edit → Stop against a fake Bot API.
func TestLifecycle(t *testing.T) {
	api := &fakeBotAPI{t: t}
	srv := httptest.NewServer(api)
	defer srv.Close()

	tg := newProvisionedTelegram(t, srv.URL)

	if err := tg.Start(); err == nil {
		t.Fatal("Start without inbox should fail")
	}

	var c collector
	tg.SetInbox(c.inbox)

	if h := tg.Health(t.Context()); h.Available {
		t.Error("channel should be unavailable before Start")
	}

	if err := tg.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if u := tg.BotUser(); u == nil || u.Username != "bac_bot" {
		t.Errorf("BotUser() = %+v", u)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(c.messages()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := c.messages(); len(got) != 1 || got[0].ID != 500 {
		t.Fatalf("inbound messages = %+v", got)
	}
	if h := tg.Health(t.Context()); !h.Available {
		t.Errorf("channel should be available while polling: %+v", h)
	}

	id, err := tg.Send(t.Context(), message.NewMarkdownMessage(-1003329818758, `*Game 22*`))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != 1 {
		t.Errorf("Send returned id %d, want 1", id)
	}

	edit := message.NewMarkdownMessage(-1003329818758, `*Game 22* won`)
	edit.EditID = id
	for range 2 {
		got, err := tg.Send(t.Context(), edit)
		if err != nil {
			t.Fatalf("edit: %v", err)
		}
		if got != id {
			t.Errorf("edit returned %d, want %d", got, id)
		}
	}

	if err := tg.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if h := tg.Health(t.Context()); h.Available {
		t.Error("channel should be unavailable after Stop")
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.sent) != 1 || api.sent[0].ParseMode != message.ParseModeMarkdownV2 || !api.sent[0].DisableWebPagePreview {
		t.Errorf("sent = %+v", api.sent)
	}
	if len(api.edits) != 2 || api.edits[0].MessageID != 1 {
		t.Errorf("edits = %+v", api.edits)
	}
}

func TestSendSplitsLongText(t *testing.T) {
	api := &fakeBotAPI{t: t}
	srv := httptest.NewServer(api)
	defer srv.Close()

	tg := newProvisionedTelegram(t, srv.URL)
	tg.config.MaxMessageLength = 20

	id, err := tg.Send(t.Context(), message.NewTextMessage(42, strings.Repeat("a", 15)+"\n"+strings.Repeat("b", 15)))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != 1 {
		t.Errorf("Send should return the first chunk ID, got %d", id)
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.sent) != 2 {
		t.Fatalf("sent %d chunks, want 2", len(api.sent))
	}
}

func TestSendRespectsCancelledContext(t *testing.T) {
	tg := &Telegram{
		config:  Config{MaxMessageLength: 4096},
		limiter: newPostLimiter(1),
		client:  NewClient("123:abc", "http://127.0.0.1:1"),
	}
	// Drain the burst so the next Wait must block.
	for range postBurst {
		tg.limiter.Allow()
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if _, err := tg.Send(ctx, message.NewTextMessage(1, "hi")); err == nil {
		t.Error("Send should fail when the context is cancelled while throttled")
	}
}
