package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/felipe-nonato/Saber-IFPB/model"
	"github.com/felipe-nonato/Saber-IFPB/util/events"
)

type HoldReleaser interface {
	ReleaseExpiredHolds(ctx context.Context) (int, error)
}

type OverdueLister interface {
	Overdue(ctx context.Context) ([]model.OverdueRental, error)
}

// HoldSweeper releases expired holds on every tick.
type HoldSweeper struct {
	svc      HoldReleaser
	interval time.Duration
	log      *slog.Logger
}

func NewHoldSweeper(svc HoldReleaser, interval time.Duration, log *slog.Logger) *HoldSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &HoldSweeper{svc: svc, interval: interval, log: log.With("service", "hold-sweeper")}
}

func (s *HoldSweeper) Serve(ctx context.Context) error {
	return tick(ctx, s.interval, s.sweep)
}

func (s *HoldSweeper) sweep(ctx context.Context) {
	n, err := s.svc.ReleaseExpiredHolds(ctx)
	if err != nil {
		s.log.Warn("hold sweep failed", "err", err, "released", n)
		return
	}
	if n > 0 {
		s.log.Info("holds released", "released", n)
	}
}

func (s *HoldSweeper) String() string { return "hold-sweeper" }

// OverdueScanner reports open rentals past their due date as rental_overdue
// events, once per rental per scan.
type OverdueScanner struct {
	svc      OverdueLister
	events   events.Publisher
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time
}

func NewOverdueScanner(svc OverdueLister, pub events.Publisher, interval time.Duration, log *slog.Logger) *OverdueScanner {
	if interval <= 0 {
		interval = time.Hour
	}
	return &OverdueScanner{
		svc:      svc,
		events:   pub,
		interval: interval,
		log:      log.With("service", "overdue-scanner"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *OverdueScanner) Serve(ctx context.Context) error {
	return tick(ctx, s.interval, s.scan)
}

func (s *OverdueScanner) scan(ctx context.Context) {
	late, err := s.svc.Overdue(ctx)
	if err != nil {
		s.log.Warn("overdue scan failed", "err", err)
		return
	}
	at := s.now()
	for _, o := range late {
		due := o.Rental.DueAt
		e := events.Event{
			Type:     events.RentalOverdue,
			BookID:   o.Rental.BookID,
			UserID:   o.Rental.UserID,
			RentalID: o.Rental.ID,
			At:       at,
			DueAt:    &due,
			LateDays: o.LateDays,
			Penalty:  o.Penalty,
		}
		if err := s.events.Publish(ctx, e); err != nil {
			s.log.Warn("publish overdue", "err", err, "rental.id", o.Rental.ID)
		}
	}
	s.log.Debug("overdue scan done", "overdue", len(late))
}

func (s *OverdueScanner) String() string { return "overdue-scanner" }

// tick runs fn once immediately and then on every interval until ctx ends.
func tick(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) error {
	fn(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			fn(ctx)
		}
	}
}
