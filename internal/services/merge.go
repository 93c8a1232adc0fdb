package services

import (
	"route-reconciliation-service/internal/domain"
	"time"
)

// MergeRouteSets reconciles two divergent copies of the same scope, for
// example from two terminals that synced independently. Neither input is
// modified.
//
// Sets are unioned, timestamps and duplicate counts take the maximum, and
// metadata from base wins unless it is empty. Afterwards every expected
// identifier is either missing or confirmed, and an identifier confirmed on
// more than one route stays confirmed only on the route that confirmed it
// first; the others fall back to missing and lose any out-of-route residue.
func MergeRouteSets(base, other *domain.RouteSet) *domain.RouteSet {
	out := base.Clone()

	for _, r := range other.Routes() {
		dst, ok := out.Get(r.RouteID)
		if !ok {
			out.Put(r.Clone())
			continue
		}
		mergeRoute(dst, r)
	}

	for _, r := range out.Routes() {
		for id := range r.Expected {
			if !r.Confirmed.Has(id) {
				r.Missing.Add(id)
			}
		}
		for id := range r.Confirmed {
			r.Missing.Remove(id)
		}
	}

	resolveConfirmedConflicts(out)
	return out
}

func mergeRoute(dst, src *domain.Route) {
	if dst.ClusterLabel == "" {
		dst.ClusterLabel = src.ClusterLabel
	}
	if dst.DestinationID == "" {
		dst.DestinationID = src.DestinationID
	}
	if dst.DestinationName == "" {
		dst.DestinationName = src.DestinationName
	}

	union(dst.Expected, src.Expected)
	union(dst.Missing, src.Missing)
	union(dst.Confirmed, src.Confirmed)
	union(dst.OutOfRoute, src.OutOfRoute)

	for id, ts := range src.LastSeenAt {
		if ts.After(dst.LastSeenAt[id]) {
			dst.LastSeenAt[id] = ts
		}
	}
	for id, n := range src.DuplicateCounts {
		if n > dst.DuplicateCounts[id] {
			dst.DuplicateCounts[id] = n
		}
	}

	dst.ExpectedCountAtImport = max(dst.ExpectedCountAtImport, src.ExpectedCountAtImport)
}

func union(dst, src domain.IDSet) {
	for id := range src {
		dst.Add(id)
	}
}

// resolveConfirmedConflicts keeps each identifier confirmed on a single route
// and purges its residue from every other route. The earliest known scan wins;
// ties keep iteration order.
func resolveConfirmedConflicts(set *domain.RouteSet) {
	type claimant struct {
		routeID string
		at      time.Time
	}

	winners := make(map[domain.Identifier]claimant)
	var conflicted []domain.Identifier

	for _, r := range set.Routes() {
		for id := range r.Confirmed {
			at := r.LastSeenAt[id]
			w, ok := winners[id]
			if !ok {
				winners[id] = claimant{routeID: r.RouteID, at: at}
				continue
			}
			conflicted = append(conflicted, id)
			if !at.IsZero() && (w.at.IsZero() || at.Before(w.at)) {
				winners[id] = claimant{routeID: r.RouteID, at: at}
			}
		}
	}

	for _, id := range conflicted {
		owner := winners[id].routeID
		for _, r := range set.Routes() {
			if r.RouteID == owner || !r.Confirmed.Has(id) {
				continue
			}
			r.Confirmed.Remove(id)
			if r.Expected.Has(id) {
				r.Missing.Add(id)
			}
		}
	}

	// Residue from the other copy may predate the confirmation.
	for id, w := range winners {
		claim(set, w.routeID, id)
	}
}
