package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ChannelIDMinDigits is the digit count from which a positive ID is taken to
// be the unsigned form of a Telegram channel or supergroup ID. Bot API
// addresses those chats with the negated value.
const ChannelIDMinDigits = 10

// ChannelID is a sign-normalized Telegram chat identifier. It implements
// encoding.TextUnmarshaler, so a value parsed from the environment is already
// normalized.
type ChannelID int64

// ParseChannelID parses s as a base-10 signed integer and normalizes its sign.
func ParseChannelID(s string) (ChannelID, error) {
	raw, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInteger, s)
	}
	return ChannelID(NormalizeChannelID(raw)), nil
}

// NormalizeChannelID negates raw when it is positive and has at least
// ChannelIDMinDigits decimal digits. Every other value is returned unchanged.
func NormalizeChannelID(raw int64) int64 {
	if raw > 0 && digitCount(raw) >= ChannelIDMinDigits {
		return -raw
	}
	return raw
}

// digitCount returns the number of decimal digits of |v|.
func digitCount(v int64) int {
	u := uint64(v)
	if v < 0 {
		u = uint64(-(v + 1)) + 1
	}
	n := 1
	for u >= 10 {
		u /= 10
		n++
	}
	return n
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ChannelID) UnmarshalText(text []byte) error {
	id, err := ParseChannelID(string(text))
	if err != nil {
		return err
	}
	*c = id
	return nil
}

// Int64 returns the normalized value.
func (c ChannelID) Int64() int64 {
	return int64(c)
}

// String implements fmt.Stringer.
func (c ChannelID) String() string {
	return strconv.FormatInt(int64(c), 10)
}
