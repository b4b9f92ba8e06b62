package rental

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/felipe-nonato/Saber-IFPB/model"
	catalogrepo "github.com/felipe-nonato/Saber-IFPB/repository/catalog"
	"github.com/felipe-nonato/Saber-IFPB/repository/locker"
	rentalrepo "github.com/felipe-nonato/Saber-IFPB/repository/rental"
	reservationrepo "github.com/felipe-nonato/Saber-IFPB/repository/reservation"
	"github.com/felipe-nonato/Saber-IFPB/util/apperr"
	"github.com/felipe-nonato/Saber-IFPB/util/events"
	"github.com/felipe-nonato/Saber-IFPB/util/metrics"

	"github.com/google/uuid"
)

// Recorder appends reading records; the history service implements it.
type Recorder interface {
	Record(ctx context.Context, userID, bookID string, rating int, at time.Time) (model.ReadingRecord, error)
}

// DepositResult carries the new book and the coins credited to its depositor.
type DepositResult struct {
	Book   model.Book
	Credit int
}

type RentResult struct {
	Book   model.Book
	Rental model.Rental
}

type ReturnResult struct {
	Book   model.Book
	Rental model.Rental
	// Promoted is set when the queue head took over the book.
	Promoted   bool
	PromotedTo string
	Penalty    int
}

type Service interface {
	// Deposit catalogs a new book as available and prices the depositor's credit.
	Deposit(ctx context.Context, depositorID string, in model.NewBook) (*DepositResult, error)
	// Rent opens a rental for an available book, or for the holder of a reserved one.
	Rent(ctx context.Context, bookID, userID string) (*RentResult, error)
	// Return closes the holder's rental, records the optional rating and
	// promotes the head of the queue.
	Return(ctx context.Context, bookID, userID string, rating *int) (*ReturnResult, error)
	// Reserve queues the user behind the current holder.
	Reserve(ctx context.Context, bookID, userID string) (model.Reservation, error)
	// CancelReservation drops a queued entry or releases the user's hold.
	CancelReservation(ctx context.Context, bookID, userID string) error
	// Queue is a snapshot of the book's reservations in serving order.
	Queue(ctx context.Context, bookID string) ([]model.Reservation, error)

	ReleaseExpiredHolds(ctx context.Context) (int, error)
	Overdue(ctx context.Context) ([]model.OverdueRental, error)
}

type Deps struct {
	Catalog catalogrepo.Repo
	Rentals rentalrepo.Repo
	Queue   reservationrepo.Repo
	History Recorder
	Locker  locker.Locker
	Events  events.Publisher
	Log     *slog.Logger
	// Now defaults to the UTC wall clock.
	Now func() time.Time
}

// ----- Service implementation -----

type service struct {
	catalog catalogrepo.Repo
	rentals rentalrepo.Repo
	queue   reservationrepo.Repo
	history Recorder
	locker  locker.Locker
	events  events.Publisher
	log     *slog.Logger
	now     func() time.Time
	policy  Policy
}

func New(d Deps, p Policy) Service {
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if p.Pricing == nil {
		p.Pricing = DefaultPolicy().Pricing
	}
	if p.Promotion == "" {
		p.Promotion = PromoteRent
	}
	return &service{
		catalog: d.Catalog,
		rentals: d.Rentals,
		queue:   d.Queue,
		history: d.History,
		locker:  d.Locker,
		events:  d.Events,
		log:     d.Log,
		now:     d.Now,
		policy:  p,
	}
}

func (s *service) Deposit(ctx context.Context, depositorID string, in model.NewBook) (out *DepositResult, err error) {
	defer s.observe("deposit", &err)

	if err := requireUser(depositorID); err != nil {
		return nil, err
	}
	in.Title, in.Author = strings.TrimSpace(in.Title), strings.TrimSpace(in.Author)
	if in.Title == "" || in.Author == "" {
		return nil, apperr.New(apperr.ErrBadInput, "title and author are required")
	}
	if in.Year < 0 || in.Pages < 0 {
		return nil, apperr.New(apperr.ErrBadInput, "year and pages cannot be negative")
	}
	b, err := s.catalog.Create(ctx, depositorID, in)
	if err != nil {
		return nil, err
	}
	out = &DepositResult{Book: b, Credit: s.policy.Pricing.Deposit()}
	s.log.Info("book deposited", "book.id", b.ID, "depositor", depositorID, "credit", out.Credit)
	s.publish(ctx, []events.Event{{Type: events.BookDeposited, BookID: b.ID, UserID: depositorID, At: b.CreatedAt, Coins: out.Credit}})
	return out, nil
}

func (s *service) Rent(ctx context.Context, bookID, userID string) (out *RentResult, err error) {
	defer s.observe("rent", &err)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	var pending []events.Event
	err = s.locker.WithLock(ctx, bookID, func(ctx context.Context) error {
		pending = nil
		now := s.now()
		b, err := s.catalog.Get(ctx, bookID)
		if err != nil {
			return err
		}
		if err := s.settleExpiredHold(ctx, &b, now, &pending); err != nil {
			return err
		}

		switch st := b.Status.(type) {
		case model.Available:
			if !s.policy.AllowDepositorRental && b.DepositorID == userID {
				return apperr.New(apperr.ErrIllegalTransition, "depositors cannot rent their own book")
			}
		case model.Reserved:
			if st.Holder != userID {
				return apperr.Newf(apperr.ErrNotHolder, "book is held for another member until %s", st.HoldUntil.Format(time.RFC3339))
			}
		case model.Rented:
			if st.Holder == userID {
				return apperr.New(apperr.ErrIllegalTransition, "you already rent this book")
			}
			return apperr.New(apperr.ErrIllegalTransition, "book is already rented")
		default:
			return apperr.Newf(apperr.ErrIllegalTransition, "unsupported state %T", st)
		}

		open, err := s.rentals.OpenForBook(ctx, bookID)
		if err != nil {
			return err
		}
		if open != nil {
			return apperr.New(apperr.ErrIllegalTransition, "book has an open rental")
		}

		rt, err := s.openRental(ctx, &b, userID, now)
		if err != nil {
			return err
		}
		pending = append(pending, events.Event{Type: events.BookRented, BookID: b.ID, UserID: userID, RentalID: rt.ID, At: now, DueAt: &rt.DueAt})
		out = &RentResult{Book: b, Rental: rt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("book rented", "book.id", bookID, "user", userID, "due_at", out.Rental.DueAt)
	s.publish(ctx, pending)
	return out, nil
}

func (s *service) Return(ctx context.Context, bookID, userID string, rating *int) (out *ReturnResult, err error) {
	defer s.observe("return", &err)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, apperr.Newf(apperr.ErrBadInput, "rating %d outside 1..5", *rating)
	}

	var pending []events.Event
	err = s.locker.WithLock(ctx, bookID, func(ctx context.Context) error {
		pending = nil
		now := s.now()
		b, err := s.catalog.Get(ctx, bookID)
		if err != nil {
			return err
		}
		st, ok := b.Status.(model.Rented)
		if !ok {
			return apperr.Newf(apperr.ErrNoOpenRental, "book is %s", b.Status.Kind())
		}
		if st.Holder != userID {
			return apperr.New(apperr.ErrNotHolder, "book is rented by another member")
		}
		open, err := s.rentals.OpenForBook(ctx, bookID)
		if err != nil {
			return err
		}
		if open == nil {
			return apperr.New(apperr.ErrNoOpenRental, "no open rental for book")
		}
		if open.UserID != userID {
			return apperr.New(apperr.ErrNotHolder, "open rental belongs to another member")
		}

		closed := *open
		closed.ReturnedAt = &now
		closed.LateDays = LateDays(open.DueAt, now)
		closed.Penalty = s.policy.Pricing.Penalty(closed.LateDays)
		ev := events.Event{Type: events.BookReturned, BookID: bookID, UserID: userID, RentalID: closed.ID, At: now}
		// The rating goes first so a failed record leaves the rental open
		// in memory mode, where nothing is rolled back.
		if rating != nil {
			if _, err := s.history.Record(ctx, userID, bookID, *rating, now); err != nil {
				return err
			}
			ev.Rating = *rating
		}
		if err := s.rentals.Close(ctx, closed); err != nil {
			return err
		}
		pending = append(pending, ev)
		if closed.Penalty > 0 {
			pending = append(pending, events.Event{
				Type: events.PenaltyApplied, BookID: bookID, UserID: userID, RentalID: closed.ID,
				At: now, LateDays: closed.LateDays, Penalty: closed.Penalty,
			})
		}

		next, err := s.promoteNext(ctx, &b, now, &pending)
		if err != nil {
			return err
		}
		out = &ReturnResult{Book: b, Rental: closed, Promoted: next != "", PromotedTo: next, Penalty: closed.Penalty}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Penalty > 0 {
		metrics.PenaltyCoins.Add(float64(out.Penalty))
	}
	s.log.Info("book returned", "book.id", bookID, "user", userID,
		"late_days", out.Rental.LateDays, "penalty", out.Penalty, "promoted_to", out.PromotedTo)
	s.publish(ctx, pending)
	return out, nil
}

func (s *service) Reserve(ctx context.Context, bookID, userID string) (res model.Reservation, err error) {
	defer s.observe("reserve", &err)

	if err := requireUser(userID); err != nil {
		return model.Reservation{}, err
	}
	var (
		pending []events.Event
		created bool
	)
	err = s.locker.WithLock(ctx, bookID, func(ctx context.Context) error {
		pending = nil
		now := s.now()
		b, err := s.catalog.Get(ctx, bookID)
		if err != nil {
			return err
		}
		if err := s.settleExpiredHold(ctx, &b, now, &pending); err != nil {
			return err
		}
		switch b.Status.(type) {
		case model.Available:
			return apperr.New(apperr.ErrIllegalTransition, "book is available, rent it instead")
		case model.Rented, model.Reserved:
			if model.HolderOf(b.Status) == userID {
				return apperr.New(apperr.ErrIllegalTransition, "you already hold this book")
			}
		default:
			return apperr.Newf(apperr.ErrIllegalTransition, "unsupported state %T", b.Status)
		}
		if !s.policy.AllowDepositorRental && b.DepositorID == userID {
			return apperr.New(apperr.ErrIllegalTransition, "depositors cannot rent their own book")
		}

		res, created, err = s.queue.Enqueue(ctx, bookID, userID, now)
		if err != nil {
			return err
		}
		if created {
			pending = append(pending, events.Event{Type: events.BookReserved, BookID: bookID, UserID: userID, At: now})
		}
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}
	if created {
		metrics.ReservationsQueued.Inc()
		s.log.Info("book reserved", "book.id", bookID, "user", userID)
	}
	s.publish(ctx, pending)
	return res, nil
}

func (s *service) CancelReservation(ctx context.Context, bookID, userID string) (err error) {
	defer s.observe("cancel_reservation", &err)

	if err := requireUser(userID); err != nil {
		return err
	}
	var pending []events.Event
	err = s.locker.WithLock(ctx, bookID, func(ctx context.Context) error {
		pending = nil
		now := s.now()
		b, err := s.catalog.Get(ctx, bookID)
		if err != nil {
			return err
		}
		cancelled := events.Event{Type: events.ReservationCancelled, BookID: bookID, UserID: userID, At: now}

		if st, ok := b.Status.(model.Reserved); ok && st.Holder == userID {
			pending = append(pending, cancelled)
			_, err := s.promoteNext(ctx, &b, now, &pending)
			return err
		}
		removed, err := s.queue.Remove(ctx, bookID, userID)
		if err != nil {
			return err
		}
		if !removed {
			return apperr.New(apperr.ErrNotFound, "no reservation for this book")
		}
		pending = append(pending, cancelled)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("reservation cancelled", "book.id", bookID, "user", userID)
	s.publish(ctx, pending)
	return nil
}

func (s *service) Queue(ctx context.Context, bookID string) ([]model.Reservation, error) {
	if _, err := s.catalog.Get(ctx, bookID); err != nil {
		return nil, err
	}
	return s.queue.List(ctx, bookID)
}

// openRental inserts a rental for userID and marks b as rented by them.
func (s *service) openRental(ctx context.Context, b *model.Book, userID string, now time.Time) (model.Rental, error) {
	days := s.policy.loanDays()
	rt := model.Rental{
		ID:        uuid.NewString(),
		BookID:    b.ID,
		UserID:    userID,
		StartedAt: now,
		DueAt:     now.Add(s.policy.LoanPeriod),
		Cost:      s.policy.Pricing.Rent(days),
	}
	if err := s.rentals.Insert(ctx, rt); err != nil {
		return model.Rental{}, err
	}
	st := model.Rented{Holder: userID, DueAt: rt.DueAt}
	if err := s.catalog.SetState(ctx, b.ID, st); err != nil {
		return model.Rental{}, err
	}
	b.Status = st
	return rt, nil
}

// promoteNext hands b to the head of its queue, or makes it available when
// nobody is waiting. It returns the promoted user, if any.
func (s *service) promoteNext(ctx context.Context, b *model.Book, now time.Time, pending *[]events.Event) (string, error) {
	head, err := s.queue.DequeueHead(ctx, b.ID)
	if err != nil {
		return "", err
	}
	if head == nil {
		if err := s.catalog.SetState(ctx, b.ID, model.Available{}); err != nil {
			return "", err
		}
		b.Status = model.Available{}
		return "", nil
	}

	switch s.policy.Promotion {
	case PromoteHold:
		st := model.Reserved{Holder: head.UserID, HoldUntil: now.Add(s.policy.HoldPeriod)}
		if err := s.catalog.SetState(ctx, b.ID, st); err != nil {
			return "", err
		}
		b.Status = st
		*pending = append(*pending, events.Event{Type: events.HoldGranted, BookID: b.ID, UserID: head.UserID, At: now, HoldUntil: &st.HoldUntil})
	default:
		rt, err := s.openRental(ctx, b, head.UserID, now)
		if err != nil {
			return "", err
		}
		*pending = append(*pending, events.Event{Type: events.BookRented, BookID: b.ID, UserID: head.UserID, RentalID: rt.ID, At: now, DueAt: &rt.DueAt})
	}
	metrics.Promotions.WithLabelValues(string(s.policy.Promotion)).Inc()
	return head.UserID, nil
}

// settleExpiredHold promotes past a hold whose deadline has passed.
func (s *service) settleExpiredHold(ctx context.Context, b *model.Book, now time.Time, pending *[]events.Event) error {
	st, ok := b.Status.(model.Reserved)
	if !ok || now.Before(st.HoldUntil) {
		return nil
	}
	*pending = append(*pending, events.Event{Type: events.HoldExpired, BookID: b.ID, UserID: st.Holder, At: now, HoldUntil: &st.HoldUntil})
	_, err := s.promoteNext(ctx, b, now, pending)
	return err
}

func (s *service) publish(ctx context.Context, evs []events.Event) {
	for _, e := range evs {
		if err := s.events.Publish(ctx, e); err != nil {
			s.log.Warn("publish event", "type", e.Type, "book.id", e.BookID, "err", err)
		}
	}
}

func (s *service) observe(op string, err *error) {
	metrics.LifecycleOps.WithLabelValues(op, metrics.Outcome(*err)).Inc()
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperr.New(apperr.ErrUnauthenticated, "missing user")
	}
	return nil
}
