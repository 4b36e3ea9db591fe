package main

import (
	"context"

	"github.com/goliatone/go-widget-auth"
	"github.com/goliatone/go-widget-auth/config"
	"github.com/goliatone/go-widget-auth/repository"
	"github.com/uptrace/bun"
)

// initRevocationStore builds the configured backend, the returned func releases it
func initRevocationStore(ctx context.Context, cfg *config.Config, db *bun.DB) (auth.RevocationStore, func(), error) {
	switch cfg.Revocation.Backend {
	case "memory":
		return auth.NewMemoryRevocationStore(), func() {}, nil
	case "redis":
		store, err := auth.NewRedisRevocationStore(ctx, cfg.Revocation.RedisURL, cfg.Revocation.KeyPrefix)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		store := repository.NewTokenBlacklistRepository(db)
		if err := store.CreateTable(ctx); err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}
