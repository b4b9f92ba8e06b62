package worker

import (
	"context"
	"log/slog"

	"github.com/felipe-nonato/Saber-IFPB/util/events"
	"github.com/felipe-nonato/Saber-IFPB/util/metrics"

	"github.com/ThreeDotsLabs/watermill/message"
)

type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

// EventLog consumes lifecycle events from the bus and writes each one to the
// log.
type EventLog struct {
	sub Subscriber
	log *slog.Logger
}

func NewEventLog(sub Subscriber, log *slog.Logger) *EventLog {
	return &EventLog{sub: sub, log: log.With("service", "event-log")}
}

func (l *EventLog) Serve(ctx context.Context) error {
	msgs, err := l.sub.Subscribe(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return ctx.Err()
			}
			l.handle(msg)
		}
	}
}

func (l *EventLog) handle(msg *message.Message) {
	// acked even when malformed
	defer msg.Ack()

	e, err := events.Decode(msg)
	if err != nil {
		l.log.Warn("drop event", "err", err)
		metrics.EventsConsumed.WithLabelValues("invalid").Inc()
		return
	}
	metrics.EventsConsumed.WithLabelValues(string(e.Type)).Inc()
	l.log.Info("lending event",
		"type", e.Type,
		"book.id", e.BookID,
		"user.id", e.UserID,
		"rental.id", e.RentalID,
		"late_days", e.LateDays,
		"penalty", e.Penalty,
	)
}

func (l *EventLog) String() string { return "event-log" }
