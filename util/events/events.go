package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
)

// Topic carries every lending lifecycle event.
const Topic = "lending.events"

type Type string

const (
	BookDeposited        Type = "book_deposited"
	BookRented           Type = "book_rented"
	BookReturned         Type = "book_returned"
	BookReserved         Type = "book_reserved"
	ReservationCancelled Type = "reservation_cancelled"
	HoldGranted          Type = "hold_granted"
	HoldExpired          Type = "hold_expired"
	PenaltyApplied       Type = "penalty_applied"
	RentalOverdue        Type = "rental_overdue"
)

type Event struct {
	Type      Type       `json:"type"`
	BookID    string     `json:"book_id"`
	UserID    string     `json:"user_id,omitempty"`
	RentalID  string     `json:"rental_id,omitempty"`
	At        time.Time  `json:"at"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	HoldUntil *time.Time `json:"hold_until,omitempty"`
	LateDays  int        `json:"late_days,omitempty"`
	Penalty   int        `json:"penalty,omitempty"`
	Coins     int        `json:"coins,omitempty"`
	Rating    int        `json:"rating,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Bus is an in-process pub/sub over a watermill GoChannel.
type Bus struct {
	pubsub *gochannel.GoChannel
}

func NewBus(log *slog.Logger) *Bus {
	ps := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, watermill.NewSlogLogger(log))
	return &Bus{pubsub: ps}
}

func (b *Bus) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("type", string(e.Type))
	msg.SetContext(ctx)
	if err := b.pubsub.Publish(Topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, Topic)
}

func (b *Bus) Close() error { return b.pubsub.Close() }

// Decode reads the event carried by msg.
func Decode(msg *message.Message) (Event, error) {
	var e Event
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return Event{}, fmt.Errorf("decode event %s: %w", msg.UUID, err)
	}
	return e, nil
}
