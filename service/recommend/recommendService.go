package recommend

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/felipe-nonato/Saber-IFPB/model"
	"github.com/felipe-nonato/Saber-IFPB/util/apperr"
	"github.com/felipe-nonato/Saber-IFPB/util/metrics"
)

type Catalog interface {
	List(ctx context.Context) ([]model.Book, error)
}

type History interface {
	ListForUser(ctx context.Context, userID string) ([]model.ReadingRecord, error)
	ListAll(ctx context.Context) ([]model.ReadingRecord, error)
}

// Waitlist lists the books a user is queued for.
type Waitlist interface {
	ListForUser(ctx context.Context, userID string) ([]model.Reservation, error)
}

type Config struct {
	DefaultLimit int
	MaxLimit     int
	// ContentWeight and CollabWeight are rescaled to sum to 1.
	ContentWeight float64
	CollabWeight  float64
}

func DefaultConfig() Config {
	return Config{DefaultLimit: 5, MaxLimit: 50, ContentWeight: 0.7, CollabWeight: 0.3}
}

type Service interface {
	// Recommend ranks unread catalog books by affinity with the user's rated
	// history, skipping books the user holds or is queued for. Scores lie in (0,1]; ties keep catalog order. The result holds
	// at most limit entries and is empty for a user with no usable history.
	Recommend(ctx context.Context, userID string, limit int) ([]model.Candidate, error)
}

type service struct {
	catalog  Catalog
	history  History
	waitlist Waitlist
	cfg      Config
	log     *slog.Logger
}

func New(c Catalog, h History, w Waitlist, cfg Config, log *slog.Logger) Service {
	def := DefaultConfig()
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = max(def.MaxLimit, cfg.DefaultLimit)
	}
	if total := cfg.ContentWeight + cfg.CollabWeight; total > 0 {
		cfg.ContentWeight /= total
		cfg.CollabWeight /= total
	} else {
		cfg.ContentWeight, cfg.CollabWeight = def.ContentWeight, def.CollabWeight
	}
	if log == nil {
		log = slog.Default()
	}
	return &service{catalog: c, history: h, waitlist: w, cfg: cfg, log: log}
}

func (s *service) Recommend(ctx context.Context, userID string, limit int) ([]model.Candidate, error) {
	if userID == "" {
		return nil, apperr.New(apperr.ErrUnauthenticated, "missing user")
	}
	startedAt := time.Now()
	defer func() { metrics.RecommendDuration.Observe(time.Since(startedAt).Seconds()) }()

	switch {
	case limit <= 0:
		limit = s.cfg.DefaultLimit
	case limit > s.cfg.MaxLimit:
		limit = s.cfg.MaxLimit
	}

	own, err := s.history.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ratings := latestRatings(own)
	if len(ratings) == 0 {
		return []model.Candidate{}, nil
	}
	books, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	queued, err := s.waitlist.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	waiting := make(map[string]bool, len(queued))
	for _, res := range queued {
		waiting[res.BookID] = true
	}

	prof := buildProfile(books, ratings)

	var collab map[string]float64
	if s.cfg.CollabWeight > 0 {
		all, err := s.history.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		collab = collaborativeScores(userID, ratings, all)
	}

	out := make([]model.Candidate, 0, len(books))
	for _, b := range books {
		if _, read := ratings[b.ID]; read {
			continue
		}
		if waiting[b.ID] || (b.Status != nil && model.HolderOf(b.Status) == userID) {
			continue
		}
		content, authors, categories := prof.score(b)
		score := s.cfg.ContentWeight*content + s.cfg.CollabWeight*collab[b.ID]
		if score <= 0 {
			continue
		}
		out = append(out, model.Candidate{
			Book:          b,
			Score:         min(score, 1),
			Authors:       authors,
			Categories:    categories,
			Content:       content,
			Collaborative: collab[b.ID],
		})
	}

	// books arrive in catalog order, so a stable sort keeps it for ties
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	s.log.Debug("recommendations ranked", "user", userID, "history", len(ratings), "returned", len(out))
	return out, nil
}

// latestRatings keeps the most recent rating per book. records must be
// ordered newest first.
func latestRatings(records []model.ReadingRecord) map[string]int {
	out := make(map[string]int, len(records))
	for _, rec := range records {
		if _, ok := out[rec.BookID]; !ok {
			out[rec.BookID] = rec.Rating
		}
	}
	return out
}
