package domain

import (
	"strings"
	"time"
)

// RouteSnapshot is the serialized shape of a Route used for persistence and export.
// Timestamps are Unix milliseconds.
type RouteSnapshot struct {
	RouteID               string               `json:"routeId"`
	ClusterLabel          string               `json:"clusterLabel"`
	DestinationID         string               `json:"destinationId"`
	DestinationName       string               `json:"destinationName"`
	ExpectedCountAtImport int                  `json:"expectedCountAtImport"`
	Expected              []Identifier         `json:"expected"`
	Missing               []Identifier         `json:"missing"`
	Confirmed             []Identifier         `json:"confirmed"`
	OutOfRoute            []Identifier         `json:"outOfRoute"`
	LastSeenAt            map[Identifier]int64 `json:"lastSeenAt"`
	DuplicateCounts       map[Identifier]int   `json:"duplicateCounts"`
}

func (r *Route) Snapshot() RouteSnapshot {
	snap := RouteSnapshot{
		RouteID:               r.RouteID,
		ClusterLabel:          r.ClusterLabel,
		DestinationID:         r.DestinationID,
		DestinationName:       r.DestinationName,
		ExpectedCountAtImport: r.ExpectedCountAtImport,
		Expected:              r.Expected.Sorted(),
		Missing:               r.Missing.Sorted(),
		Confirmed:             r.Confirmed.Sorted(),
		OutOfRoute:            r.OutOfRoute.Sorted(),
		LastSeenAt:            make(map[Identifier]int64, len(r.LastSeenAt)),
		DuplicateCounts:       make(map[Identifier]int, len(r.DuplicateCounts)),
	}
	for id, ts := range r.LastSeenAt {
		snap.LastSeenAt[id] = ts.UnixMilli()
	}
	for id, n := range r.DuplicateCounts {
		snap.DuplicateCounts[id] = n
	}
	return snap
}

// RouteFromSnapshot rebuilds a Route and repairs the missing set.
//
// A stored route with an empty missing set but a non-empty manifest gets its
// missing set rebuilt from the manifest. Confirmed identifiers are never left
// in missing.
func RouteFromSnapshot(snap RouteSnapshot) *Route {
	r := NewRoute(snap.RouteID)
	r.ClusterLabel = snap.ClusterLabel
	r.DestinationID = snap.DestinationID
	r.DestinationName = snap.DestinationName
	r.ExpectedCountAtImport = max(snap.ExpectedCountAtImport, 0)

	addAll(r.Expected, snap.Expected)
	addAll(r.Missing, snap.Missing)
	addAll(r.Confirmed, snap.Confirmed)
	addAll(r.OutOfRoute, snap.OutOfRoute)

	for id, ms := range snap.LastSeenAt {
		if id == "" {
			continue
		}
		r.LastSeenAt[id] = time.UnixMilli(ms).UTC()
	}
	for id, n := range snap.DuplicateCounts {
		if id == "" || n < 2 {
			continue
		}
		r.DuplicateCounts[id] = n
	}

	if r.Missing.Len() == 0 && r.Expected.Len() > 0 {
		for id := range r.Expected {
			r.Missing.Add(id)
		}
	}
	for id := range r.Confirmed {
		r.Missing.Remove(id)
	}

	return r
}

func addAll(dst IDSet, ids []Identifier) {
	for _, id := range ids {
		id = Identifier(strings.TrimSpace(string(id)))
		if id == "" {
			continue
		}
		dst.Add(id)
	}
}

// Snapshot serializes every route in iteration order.
func (s *RouteSet) Snapshot() []RouteSnapshot {
	out := make([]RouteSnapshot, 0, s.Len())
	for _, r := range s.Routes() {
		out = append(out, r.Snapshot())
	}
	return out
}

// RouteSetFromSnapshot rebuilds a RouteSet, keeping snapshot order.
// Snapshots without a route id are dropped; a repeated id replaces the earlier entry.
func RouteSetFromSnapshot(snaps []RouteSnapshot) *RouteSet {
	s := NewRouteSet()
	for _, snap := range snaps {
		if strings.TrimSpace(snap.RouteID) == "" {
			continue
		}
		s.Put(RouteFromSnapshot(snap))
	}
	return s
}
