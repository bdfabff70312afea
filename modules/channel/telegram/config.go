package telegram

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"

	"github.com/flemzord/bacbot/internal/channel"
	"github.com/flemzord/bacbot/internal/config"
)

// tokenPattern matches the Telegram bot token format: <digits>:<alphanum+dash>.
var tokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// Config holds the Telegram channel configuration.
type Config struct {
	Token            string
	APIURL           string
	PollingTimeout   int
	AllowedUpdates   []string
	MaxMessageLength int
	PostsPerMinute   int

	// AllowUsers admits private messages from these user IDs.
	AllowUsers []int64
	// AllowChats admits posts from these chats.
	AllowChats []int64
}

// configFrom derives the channel settings from the process configuration:
// the source channels are the only chats admitted, the admin the only user.
func configFrom(cfg *config.Config) Config {
	c := Config{
		Token:          cfg.BotToken,
		APIURL:         cfg.TelegramAPIURL,
		PollingTimeout: cfg.PollingTimeout,
		PostsPerMinute: cfg.PostsPerMinute,
		AllowChats:     cfg.SourceChannels(),
	}
	if cfg.AdminID != 0 {
		c.AllowUsers = []int64{cfg.AdminID}
	}
	c.defaults()
	return c
}

// defaults applies default values to unset fields.
func (c *Config) defaults() {
	if c.AllowedUpdates == nil {
		c.AllowedUpdates = []string{"message", "channel_post", "edited_channel_post"}
	}
	if c.MaxMessageLength == 0 {
		c.MaxMessageLength = channel.TelegramMaxLength
	}
	if c.APIURL == "" {
		c.APIURL = "https://api.telegram.org"
	}
}

// validate checks configuration field constraints.
func (c *Config) validate() error {
	if c.Token == "" {
		return errors.New("telegram: token is required")
	}
	if c.Token == config.PlaceholderBotToken {
		return errors.New("telegram: BOT_TOKEN is still the placeholder default")
	}
	if !tokenPattern.MatchString(c.Token) {
		return errors.New("telegram: token format invalid (expected <bot_id>:<hash>)")
	}

	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("telegram: api_url must be a valid http/https URL, got %q", c.APIURL)
	}

	if c.PollingTimeout < 0 || c.PollingTimeout > 50 {
		return fmt.Errorf("telegram: polling_timeout must be 0-50, got %d", c.PollingTimeout)
	}

	if c.MaxMessageLength < 1 || c.MaxMessageLength > channel.TelegramMaxLength {
		return fmt.Errorf("telegram: max_message_length must be 1-%d, got %d", channel.TelegramMaxLength, c.MaxMessageLength)
	}

	if c.PostsPerMinute < 0 {
		return fmt.Errorf("telegram: posts_per_minute must be non-negative, got %d", c.PostsPerMinute)
	}

	if len(c.AllowChats) == 0 {
		return errors.New("telegram: at least one source chat is required")
	}
	return nil
}
