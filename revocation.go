package auth

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// RevocationStore records tokens that must be rejected before their
// embedded expiry. Add is idempotent.
type RevocationStore interface {
	Add(ctx context.Context, token string, expiresAt time.Time) error
	Contains(ctx context.Context, token string) (bool, error)
}

// RevocationPruner is implemented by stores that need explicit garbage
// collection. Prune removes entries whose token expired at or before now.
type RevocationPruner interface {
	Prune(ctx context.Context, now time.Time) (int, error)
}

// MemoryRevocationStore keeps revoked tokens in a concurrent map
type MemoryRevocationStore struct {
	entries *xsync.MapOf[string, time.Time]
}

var (
	_ RevocationStore  = (*MemoryRevocationStore)(nil)
	_ RevocationPruner = (*MemoryRevocationStore)(nil)
)

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		entries: xsync.NewMapOf[string, time.Time](),
	}
}

func (s *MemoryRevocationStore) Add(ctx context.Context, token string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.entries.LoadOrStore(token, expiresAt)
	return nil
}

func (s *MemoryRevocationStore) Contains(ctx context.Context, token string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := s.entries.Load(token)
	return ok, nil
}

func (s *MemoryRevocationStore) Prune(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	s.entries.Range(func(token string, expiresAt time.Time) bool {
		if ctx.Err() != nil {
			return false
		}
		if !expiresAt.After(now) {
			s.entries.Delete(token)
			removed++
		}
		return true
	})
	return removed, ctx.Err()
}

// Len returns the number of entries
func (s *MemoryRevocationStore) Len() int {
	return s.entries.Size()
}
