package ports

import (
	"context"
	"route-reconciliation-service/internal/domain"
)

// Port: a boundary for persisting the route set of one reconciliation scope.
type RouteSetStore interface {
	// Return the stored route set for a scope, or an empty set if none was saved.
	LoadRouteSet(ctx context.Context, scopeKey string) (*domain.RouteSet, error)
	// Replace the stored route set for a scope. Safe to call after every change.
	SaveRouteSet(ctx context.Context, scopeKey string, set *domain.RouteSet) error
	// Forget everything stored for a scope.
	DeleteRouteSet(ctx context.Context, scopeKey string) error
}
