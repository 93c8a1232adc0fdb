package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"route-reconciliation-service/internal/domain"
	"route-reconciliation-service/internal/platform/obs"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "recon:routes:"

// RedisRouteSetStore keeps each scope as one JSON array of route snapshots
// under recon:routes:<scope>.
type RedisRouteSetStore struct {
	Client *redis.Client
}

func NewRedisRouteSetStore(client *redis.Client) *RedisRouteSetStore {
	return &RedisRouteSetStore{Client: client}
}

func redisKey(scopeKey string) string {
	return redisKeyPrefix + scopeKey
}

func (s *RedisRouteSetStore) LoadRouteSet(ctx context.Context, scopeKey string) (_ *domain.RouteSet, err error) {
	defer obs.Time(ctx, "routes.redis.Load")(&err)

	if s.Client == nil {
		return nil, errors.New("redis route store: client is nil")
	}
	if strings.TrimSpace(scopeKey) == "" {
		return nil, errors.New("load route set: scope key must not be empty")
	}

	raw, err := s.Client.Get(ctx, redisKey(scopeKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewRouteSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load route set: redis get: %w", err)
	}

	var snaps []domain.RouteSnapshot
	if err := json.Unmarshal(raw, &snaps); err != nil {
		return nil, fmt.Errorf("load route set: decode payload: %w", err)
	}
	return domain.RouteSetFromSnapshot(snaps), nil
}

func (s *RedisRouteSetStore) SaveRouteSet(ctx context.Context, scopeKey string, set *domain.RouteSet) (err error) {
	defer obs.Time(ctx, "routes.redis.Save")(&err)

	if s.Client == nil {
		return errors.New("redis route store: client is nil")
	}
	if strings.TrimSpace(scopeKey) == "" {
		return errors.New("save route set: scope key must not be empty")
	}

	payload, err := json.Marshal(set.Snapshot())
	if err != nil {
		return fmt.Errorf("save route set: encode payload: %w", err)
	}

	if err := s.Client.Set(ctx, redisKey(scopeKey), payload, 0).Err(); err != nil {
		return fmt.Errorf("save route set: redis set: %w", err)
	}
	return nil
}

func (s *RedisRouteSetStore) DeleteRouteSet(ctx context.Context, scopeKey string) (err error) {
	defer obs.Time(ctx, "routes.redis.Delete")(&err)

	if s.Client == nil {
		return errors.New("redis route store: client is nil")
	}

	if err := s.Client.Del(ctx, redisKey(scopeKey)).Err(); err != nil {
		return fmt.Errorf("delete route set: redis del: %w", err)
	}
	return nil
}
