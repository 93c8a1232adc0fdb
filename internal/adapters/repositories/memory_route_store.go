package repositories

import (
	"context"
	"route-reconciliation-service/internal/domain"
	"sync"
)

// MemoryRouteSetStore keeps snapshots in process memory. Used for tests and
// for running without any backing database.
type MemoryRouteSetStore struct {
	mu     sync.Mutex
	scopes map[string][]domain.RouteSnapshot
}

func NewMemoryRouteSetStore() *MemoryRouteSetStore {
	return &MemoryRouteSetStore{scopes: make(map[string][]domain.RouteSnapshot)}
}

func (s *MemoryRouteSetStore) LoadRouteSet(ctx context.Context, scopeKey string) (*domain.RouteSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.RouteSetFromSnapshot(s.scopes[scopeKey]), nil
}

func (s *MemoryRouteSetStore) SaveRouteSet(ctx context.Context, scopeKey string, set *domain.RouteSet) error {
	snaps := set.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.scopes[scopeKey] = snaps
	return nil
}

func (s *MemoryRouteSetStore) DeleteRouteSet(ctx context.Context, scopeKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.scopes, scopeKey)
	return nil
}
