package domain

import (
	"slices"
	"strings"
)

// RouteSet holds every route of one reconciliation scope.
//
// Iteration follows insertion order. Ownership lookups resolve ties by that
// order, so a set rebuilt from a snapshot keeps the snapshot's order.
// A RouteSet is not safe for concurrent use.
type RouteSet struct {
	routes map[string]*Route
	order  []string
}

func NewRouteSet() *RouteSet {
	return &RouteSet{routes: make(map[string]*Route)}
}

func (s *RouteSet) Len() int { return len(s.order) }

func (s *RouteSet) Get(routeID string) (*Route, bool) {
	r, ok := s.routes[routeID]
	return r, ok
}

// GetOrCreate returns the route with the given id, appending an empty one
// when it does not exist yet.
func (s *RouteSet) GetOrCreate(routeID string) *Route {
	if r, ok := s.routes[routeID]; ok {
		return r
	}
	r := NewRoute(routeID)
	s.Put(r)
	return r
}

// Put stores r, replacing any route with the same id in place.
func (s *RouteSet) Put(r *Route) {
	if _, ok := s.routes[r.RouteID]; !ok {
		s.order = append(s.order, r.RouteID)
	}
	s.routes[r.RouteID] = r
}

// Delete removes a route. It reports whether the route existed.
func (s *RouteSet) Delete(routeID string) bool {
	if _, ok := s.routes[routeID]; !ok {
		return false
	}
	delete(s.routes, routeID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == routeID })
	return true
}

func (s *RouteSet) Clear() {
	s.routes = make(map[string]*Route)
	s.order = nil
}

// Routes returns the routes in iteration order.
func (s *RouteSet) Routes() []*Route {
	out := make([]*Route, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.routes[id])
	}
	return out
}

// SortedRoutes returns the routes ordered by route id.
func (s *RouteSet) SortedRoutes() []*Route {
	out := s.Routes()
	slices.SortFunc(out, func(a, b *Route) int { return strings.Compare(a.RouteID, b.RouteID) })
	return out
}

// Owner resolves the route that should own id.
//
// A route that already confirmed id wins. Otherwise the first route whose
// manifest lists it wins. Manifests are expected to be disjoint; when they are
// not, iteration order decides.
func (s *RouteSet) Owner(id Identifier) (string, bool) {
	for _, rid := range s.order {
		if s.routes[rid].Confirmed.Has(id) {
			return rid, true
		}
	}
	for _, rid := range s.order {
		r := s.routes[rid]
		if r.Expected.Has(id) || r.Missing.Has(id) {
			return rid, true
		}
	}
	return "", false
}

// Placement says how a route references an identifier.
type Placement string

const (
	PlacementConfirmed  Placement = "confirmed"
	PlacementBelongs    Placement = "belongs"
	PlacementOutOfRoute Placement = "out_of_route"
)

// Location annotates where an identifier lives outside the route being viewed.
type Location struct {
	Where        Placement
	RouteID      string
	ClusterLabel string
}

// Locate finds the route, other than excludingRouteID, that references id.
// Confirmed beats manifest membership, which beats out-of-route residue.
func (s *RouteSet) Locate(id Identifier, excludingRouteID string) (Location, bool) {
	tiers := []struct {
		where Placement
		match func(*Route) bool
	}{
		{PlacementConfirmed, func(r *Route) bool { return r.Confirmed.Has(id) }},
		{PlacementBelongs, func(r *Route) bool { return r.Expected.Has(id) || r.Missing.Has(id) }},
		{PlacementOutOfRoute, func(r *Route) bool { return r.OutOfRoute.Has(id) }},
	}

	for _, tier := range tiers {
		for _, rid := range s.order {
			if rid == excludingRouteID {
				continue
			}
			r := s.routes[rid]
			if tier.match(r) {
				return Location{Where: tier.where, RouteID: rid, ClusterLabel: r.ClusterLabel}, true
			}
		}
	}
	return Location{}, false
}

// Clone returns a deep copy of the set and all of its routes.
func (s *RouteSet) Clone() *RouteSet {
	out := NewRouteSet()
	for _, r := range s.Routes() {
		out.Put(r.Clone())
	}
	return out
}
