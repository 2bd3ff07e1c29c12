package main

import (
	"context"
	"fmt"

	"github.com/breachcase/breachwatch/internal/store"
)

func openStore(ctx context.Context) (*store.PostgresStore, error) {
	if cfg.Store.DatabaseURL == "" {
		return nil, fmt.Errorf("store.database_url is not configured (BREACHWATCH_STORE_DATABASE_URL)")
	}
	return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
		MaxConns: cfg.Store.MaxConns,
		MinConns: cfg.Store.MinConns,
	})
}
