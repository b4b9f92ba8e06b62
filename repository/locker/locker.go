package locker

import (
	"context"
	"fmt"

	"github.com/felipe-nonato/Saber-IFPB/util/database"

	mobylocker "github.com/moby/locker"
)

// Locker serializes work per key. Repository calls made with the ctx handed
// to fn are committed together when fn returns nil.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

type memory struct{ keys *mobylocker.Locker }

// NewMemory serializes per key in process. The memory stores are not
// transactional: writes made by fn before it fails stay applied.
func NewMemory() Locker { return &memory{keys: mobylocker.New()} }

func (m *memory) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.keys.Lock(key)
	defer func() { _ = m.keys.Unlock(key) }()
	return fn(ctx)
}

type advisory struct{ db *database.DB }

// New takes a transaction-scoped advisory lock, released on commit or rollback.
func New(db *database.DB) Locker { return &advisory{db: db} }

func (a *advisory) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return a.db.InTx(ctx, func(ctx context.Context) error {
		if _, err := a.db.Q(ctx).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
			return fmt.Errorf("advisory lock %s: %w", key, err)
		}
		return fn(ctx)
	})
}
