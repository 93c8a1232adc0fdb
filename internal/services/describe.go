package services

import (
	"route-reconciliation-service/internal/domain"
	"slices"
	"strings"
)

// DuplicateEntry is an identifier scanned more than once on a route.
type DuplicateEntry struct {
	Identifier domain.Identifier
	Count      int
}

// OutOfRouteEntry is an out-of-route identifier annotated with the route it
// actually belongs to, when one is known.
type OutOfRouteEntry struct {
	Identifier domain.Identifier
	Location   *domain.Location
}

// RouteDetail is everything an operator view shows for one route.
type RouteDetail struct {
	Summary    domain.RouteSummary
	Confirmed  []domain.Identifier
	Missing    []domain.Identifier
	OutOfRoute []OutOfRouteEntry
	Duplicates []DuplicateEntry
}

// DescribeRoute builds the operator view of a route. Lists are sorted by
// identifier so repeated renders are stable.
func DescribeRoute(set *domain.RouteSet, routeID string) (RouteDetail, bool) {
	r, ok := set.Get(routeID)
	if !ok {
		return RouteDetail{}, false
	}

	d := RouteDetail{
		Summary:   r.Summary(),
		Confirmed: r.Confirmed.Sorted(),
		Missing:   r.Missing.Sorted(),
	}

	for _, id := range r.OutOfRoute.Sorted() {
		entry := OutOfRouteEntry{Identifier: id}
		if loc, ok := set.Locate(id, routeID); ok {
			entry.Location = &loc
		}
		d.OutOfRoute = append(d.OutOfRoute, entry)
	}

	for id, n := range r.DuplicateCounts {
		d.Duplicates = append(d.Duplicates, DuplicateEntry{Identifier: id, Count: n})
	}
	slices.SortFunc(d.Duplicates, func(a, b DuplicateEntry) int {
		return strings.Compare(string(a.Identifier), string(b.Identifier))
	})

	return d, true
}

// Summaries lists every route of the set ordered by route id.
func Summaries(set *domain.RouteSet) []domain.RouteSummary {
	routes := set.SortedRoutes()
	out := make([]domain.RouteSummary, 0, len(routes))
	for _, r := range routes {
		out = append(out, r.Summary())
	}
	return out
}
