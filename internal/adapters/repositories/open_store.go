package repositories

import (
	"context"
	"fmt"
	"route-reconciliation-service/internal/platform/db"
	"route-reconciliation-service/internal/platform/obs"
	"route-reconciliation-service/internal/ports"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	BackendSqlite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

type StoreOptions struct {
	Backend       string
	DBPath        string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	AutoMigrate   bool
}

// OpenStore builds the RouteSetStore selected by opts.Backend. The returned
// close function releases the underlying connection.
func OpenStore(ctx context.Context, opts StoreOptions) (ports.RouteSetStore, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendSqlite:
		conn, err := db.OpenSqlite(opts.DBPath)
		if err != nil {
			return nil, noop, fmt.Errorf("open store: %w", err)
		}
		if err := InitSchema(conn); err != nil {
			_ = conn.Close()
			return nil, noop, fmt.Errorf("open store: %w", err)
		}
		obs.L().Infow("route store ready", "backend", BackendSqlite, "db_path", opts.DBPath)
		return NewSqliteRouteSetStore(conn), conn.Close, nil

	case BackendPostgres:
		if opts.DatabaseURL == "" {
			return nil, noop, fmt.Errorf("open store: DATABASE_URL is required for the postgres backend")
		}
		if opts.AutoMigrate {
			if err := MigrateUp(opts.DatabaseURL); err != nil {
				return nil, noop, fmt.Errorf("open store: %w", err)
			}
		}
		conn, err := db.Open(opts.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("open store: %w", err)
		}
		obs.L().Infow("route store ready", "backend", BackendPostgres, "auto_migrate", opts.AutoMigrate)
		return NewSQLRouteSetStore(conn), conn.Close, nil

	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("open store: ping redis at %q: %w", opts.RedisAddr, err)
		}
		obs.L().Infow("route store ready", "backend", BackendRedis, "addr", opts.RedisAddr)
		return NewRedisRouteSetStore(client), client.Close, nil

	case BackendMemory:
		obs.L().Infow("route store ready", "backend", BackendMemory)
		return NewMemoryRouteSetStore(), noop, nil
	}

	return nil, noop, fmt.Errorf("open store: unknown backend %q", opts.Backend)
}
