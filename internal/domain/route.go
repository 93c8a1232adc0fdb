package domain

import (
	"slices"
	"strings"
	"time"
)

// IDSet is an unordered set of identifiers.
// Callers that need a stable order must use Sorted.
type IDSet map[Identifier]struct{}

func NewIDSet(ids ...Identifier) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s IDSet) Has(id Identifier) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Add(id Identifier) { s[id] = struct{}{} }

func (s IDSet) Remove(id Identifier) { delete(s, id) }

func (s IDSet) Len() int { return len(s) }

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []Identifier {
	out := make([]Identifier, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Route is the unit of reconciliation: a manifest of expected identifiers
// plus the live scan state collected against it.
//
// Expected only grows. Every expected identifier is either Missing or
// Confirmed, never both. OutOfRoute holds identifiers scanned here that
// this route does not own.
type Route struct {
	RouteID         string
	ClusterLabel    string
	DestinationID   string
	DestinationName string

	Expected   IDSet
	Missing    IDSet
	Confirmed  IDSet
	OutOfRoute IDSet

	// Total observed scans per identifier, present only once it reached 2.
	DuplicateCounts map[Identifier]int
	LastSeenAt      map[Identifier]time.Time

	// Progress denominator, fixed at the last import.
	ExpectedCountAtImport int
}

// NewRoute returns an empty route with the given id.
func NewRoute(routeID string) *Route {
	return &Route{
		RouteID:         routeID,
		Expected:        NewIDSet(),
		Missing:         NewIDSet(),
		Confirmed:       NewIDSet(),
		OutOfRoute:      NewIDSet(),
		DuplicateCounts: make(map[Identifier]int),
		LastSeenAt:      make(map[Identifier]time.Time),
	}
}

// ProgressPercent reports how much of the manifest is confirmed, floored, in [0, 100].
func (r *Route) ProgressPercent() int {
	total := max(r.ExpectedCountAtImport, r.Expected.Len(), r.Confirmed.Len()+r.Missing.Len(), 1)

	pct := r.Confirmed.Len() * 100 / total
	return min(max(pct, 0), 100)
}

// Holds reports whether the route still references id in any of its sets
// or in its duplicate counters.
func (r *Route) Holds(id Identifier) bool {
	if r.Confirmed.Has(id) || r.Missing.Has(id) || r.Expected.Has(id) || r.OutOfRoute.Has(id) {
		return true
	}
	_, ok := r.DuplicateCounts[id]
	return ok
}

// Label is the operator-facing name of the route.
func (r *Route) Label() string {
	parts := []string{"ROUTE " + r.RouteID}
	if r.ClusterLabel != "" {
		parts = append(parts, "CLUSTER "+r.ClusterLabel)
	}
	if r.DestinationID != "" {
		parts = append(parts, "XPT "+r.DestinationID)
	}
	return strings.Join(parts, " • ")
}

// Clone returns a deep copy that shares no state with r.
func (r *Route) Clone() *Route {
	out := &Route{
		RouteID:               r.RouteID,
		ClusterLabel:          r.ClusterLabel,
		DestinationID:         r.DestinationID,
		DestinationName:       r.DestinationName,
		Expected:              r.Expected.Clone(),
		Missing:               r.Missing.Clone(),
		Confirmed:             r.Confirmed.Clone(),
		OutOfRoute:            r.OutOfRoute.Clone(),
		DuplicateCounts:       make(map[Identifier]int, len(r.DuplicateCounts)),
		LastSeenAt:            make(map[Identifier]time.Time, len(r.LastSeenAt)),
		ExpectedCountAtImport: r.ExpectedCountAtImport,
	}
	for id, n := range r.DuplicateCounts {
		out.DuplicateCounts[id] = n
	}
	for id, ts := range r.LastSeenAt {
		out.LastSeenAt[id] = ts
	}
	return out
}

// RouteSummary is the read-only headline view of a route.
type RouteSummary struct {
	RouteID         string
	Label           string
	ClusterLabel    string
	DestinationID   string
	DestinationName string
	ExpectedTotal   int
	Confirmed       int
	Missing         int
	OutOfRoute      int
	Duplicates      int
	ProgressPercent int
}

func (r *Route) Summary() RouteSummary {
	// Total shown to the operator prefers the import snapshot.
	total := r.ExpectedCountAtImport
	if total == 0 {
		total = r.Expected.Len()
	}

	return RouteSummary{
		RouteID:         r.RouteID,
		Label:           r.Label(),
		ClusterLabel:    r.ClusterLabel,
		DestinationID:   r.DestinationID,
		DestinationName: r.DestinationName,
		ExpectedTotal:   total,
		Confirmed:       r.Confirmed.Len(),
		Missing:         r.Missing.Len(),
		OutOfRoute:      r.OutOfRoute.Len(),
		Duplicates:      len(r.DuplicateCounts),
		ProgressPercent: r.ProgressPercent(),
	}
}
