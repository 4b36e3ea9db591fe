package repository

import (
	"context"
	"time"

	"github.com/goliatone/go-widget-auth"
	"github.com/uptrace/bun"
)

// BlacklistedTokenModel is the Bun model for revoked access tokens.
// ExpiresAt mirrors the token exp claim so the row can be pruned once the
// token is rejected on expiry alone.
type BlacklistedTokenModel struct {
	bun.BaseModel `bun:"table:token_blacklist,alias:tbl"`

	Token         string    `bun:"token,pk"`
	ExpiresAt     time.Time `bun:"expires_at,notnull"`
	BlacklistedOn time.Time `bun:"blacklisted_on,notnull,default:current_timestamp"`
}

// TokenBlacklistRepository implements auth.RevocationStore using Bun.
type TokenBlacklistRepository struct {
	db  bun.IDB
	now func() time.Time
}

var (
	_ auth.RevocationStore  = (*TokenBlacklistRepository)(nil)
	_ auth.RevocationPruner = (*TokenBlacklistRepository)(nil)
)

// NewTokenBlacklistRepository creates a new repository.
func NewTokenBlacklistRepository(db bun.IDB) *TokenBlacklistRepository {
	return &TokenBlacklistRepository{db: db, now: time.Now}
}

// CreateTable creates the blacklist table when missing.
func (r *TokenBlacklistRepository) CreateTable(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*BlacklistedTokenModel)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// Add implements auth.RevocationStore. A token already present is left as is.
func (r *TokenBlacklistRepository) Add(ctx context.Context, token string, expiresAt time.Time) error {
	model := &BlacklistedTokenModel{
		Token:         token,
		ExpiresAt:     expiresAt.UTC(),
		BlacklistedOn: r.now().UTC(),
	}

	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (token) DO NOTHING").
		Returning("NULL").
		Exec(ctx)

	return err
}

// Contains implements auth.RevocationStore.
func (r *TokenBlacklistRepository) Contains(ctx context.Context, token string) (bool, error) {
	return r.db.NewSelect().
		Model((*BlacklistedTokenModel)(nil)).
		Where("token = ?", token).
		Exists(ctx)
}

// Prune implements auth.RevocationPruner.
func (r *TokenBlacklistRepository) Prune(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.NewDelete().
		Model((*BlacklistedTokenModel)(nil)).
		Where("expires_at <= ?", now.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Count returns the number of blacklisted tokens.
func (r *TokenBlacklistRepository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().
		Model((*BlacklistedTokenModel)(nil)).
		Count(ctx)
}
