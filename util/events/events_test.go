package events

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer bus.Close()

	msgs, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	due := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, bus.Publish(ctx, Event{
		Type:   BookRented,
		BookID: "b-1",
		UserID: "u-1",
		At:     due.Add(-14 * 24 * time.Hour),
		DueAt:  &due,
	}))

	select {
	case msg := <-msgs:
		msg.Ack()
		require.Equal(t, string(BookRented), msg.Metadata.Get("type"))
		e, err := Decode(msg)
		require.NoError(t, err)
		require.Equal(t, "b-1", e.BookID)
		require.Equal(t, "u-1", e.UserID)
		require.True(t, due.Equal(*e.DueAt))
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode(message.NewMessage("m-1", []byte("not json")))
	require.Error(t, err)
}
