package rental

import (
	"context"

	"github.com/felipe-nonato/Saber-IFPB/model"
	"github.com/felipe-nonato/Saber-IFPB/util/events"
	"github.com/felipe-nonato/Saber-IFPB/util/metrics"
)

// ReleaseExpiredHolds promotes past every hold whose deadline has passed and
// returns how many were released.
func (s *service) ReleaseExpiredHolds(ctx context.Context) (int, error) {
	books, err := s.catalog.List(ctx)
	if err != nil {
		return 0, err
	}
	released := 0
	for _, b := range books {
		st, ok := b.Status.(model.Reserved)
		if !ok || s.now().Before(st.HoldUntil) {
			continue
		}
		var pending []events.Event
		err := s.locker.WithLock(ctx, b.ID, func(ctx context.Context) error {
			pending = nil
			cur, err := s.catalog.Get(ctx, b.ID)
			if err != nil {
				return err
			}
			// re-checked under the lock: the holder may have rented meanwhile
			return s.settleExpiredHold(ctx, &cur, s.now(), &pending)
		})
		if err != nil {
			return released, err
		}
		if len(pending) == 0 {
			continue
		}
		released++
		metrics.HoldsExpired.Inc()
		s.log.Info("hold expired", "book.id", b.ID, "holder", st.Holder)
		s.publish(ctx, pending)
	}
	return released, nil
}

// Overdue lists open rentals past their due date with the penalty a return
// right now would incur.
func (s *service) Overdue(ctx context.Context) ([]model.OverdueRental, error) {
	open, err := s.rentals.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := []model.OverdueRental{}
	for _, rt := range open {
		days := LateDays(rt.DueAt, now)
		if days == 0 {
			continue
		}
		out = append(out, model.OverdueRental{Rental: rt, LateDays: days, Penalty: s.policy.Pricing.Penalty(days)})
	}
	metrics.OverdueRentals.Set(float64(len(out)))
	return out, nil
}
