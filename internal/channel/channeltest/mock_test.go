package channeltest

import (
	"context"
	"errors"
	"testing"

	"github.com/flemzord/bacbot/internal/channel"
	"github.com/flemzord/bacbot/pkg/message"
)

func TestMockChannel_ModuleInfo(t *testing.T) {
	t.Parallel()
	ch := NewMockChannel("telegram", nil)
	if got := string(ch.ModuleInfo().ID); got != "channel.telegram" {
		t.Errorf("ModuleID = %q, want %q", got, "channel.telegram")
	}
}

func TestMockChannel_SendAssignsIDs(t *testing.T) {
	t.Parallel()
	ch := NewMockChannel("test", nil)

	id1, err := ch.Send(t.Context(), message.NewTextMessage(-1, "one"))
	if err != nil {
		t.Fatal(err)
	}
	id2, _ := ch.Send(t.Context(), message.NewTextMessage(-1, "two"))
	if id2 <= id1 {
		t.Errorf("IDs should increase: %d then %d", id1, id2)
	}

	edit := message.NewTextMessage(-1, "one, edited")
	edit.EditID = id1
	got, _ := ch.Send(t.Context(), edit)
	if got != id1 {
		t.Errorf("edit returned %d, want %d", got, id1)
	}

	if n := len(ch.SentTo(-1)); n != 3 {
		t.Errorf("SentTo(-1) = %d messages, want 3", n)
	}
	ch.Reset()
	if n := len(ch.SentMessages()); n != 0 {
		t.Errorf("after Reset: %d messages", n)
	}
}

func TestMockChannel_SimulateMessage(t *testing.T) {
	t.Parallel()
	ch := NewMockChannel("telegram", channel.NewAllowList([]int64{42}, nil))
	msg := message.InboundMessage{Sender: message.Sender{ID: 42}, Chat: message.Chat{ID: 42, Type: message.ChatDM}}

	if err := ch.SimulateMessage(t.Context(), msg); !errors.Is(err, channel.ErrNoInbox) {
		t.Fatalf("err = %v, want ErrNoInbox", err)
	}

	var got message.InboundMessage
	ch.SetInbox(func(_ context.Context, m message.InboundMessage) error {
		got = m
		return nil
	})
	if err := ch.SimulateMessage(t.Context(), msg); err != nil {
		t.Fatalf("SimulateMessage: %v", err)
	}
	if got.Channel != "telegram" {
		t.Errorf("Channel = %q, want telegram", got.Channel)
	}

	msg.Sender.ID = 7
	msg.Chat.ID = 7
	if err := ch.SimulateMessage(t.Context(), msg); !errors.Is(err, channel.ErrDenied) {
		t.Errorf("err = %v, want ErrDenied", err)
	}
}
