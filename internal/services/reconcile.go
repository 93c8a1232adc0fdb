package services

import (
	"route-reconciliation-service/internal/domain"
	"slices"
	"time"
)

// Record classifies one scan of id against the active route and mutates the
// route set accordingly.
//
// The true owner is resolved first. When the active route is the owner, any
// out-of-route or duplicate residue for id on other routes is purged before
// classification. The scan is then a duplicate if the active route already
// confirmed id, a confirmation if id is missing there and not confirmed on
// another route, a duplicate if it was already out of route here, and
// out-of-route otherwise.
//
// Record never fails. Empty ids and unknown routes come back as skipped
// outcomes with every route untouched. Calls against the same set must be
// serialized by the caller.
func Record(set *domain.RouteSet, activeRouteID string, id domain.Identifier, occurredAt time.Time) domain.Outcome {
	out := domain.Outcome{RouteID: activeRouteID, Identifier: id}

	if set == nil || id == "" {
		out.Kind = domain.OutcomeSkipped
		out.Reason = domain.SkipNoOp
		return out
	}

	r, ok := set.Get(activeRouteID)
	if !ok {
		out.Kind = domain.OutcomeSkipped
		out.Reason = domain.SkipUnknownRoute
		return out
	}
	out.Route = r

	owner, _ := set.Owner(id)
	out.OwnerRouteID = owner

	if owner == activeRouteID {
		out.PurgedFrom = claim(set, activeRouteID, id)
	}

	switch {
	case r.Confirmed.Has(id):
		countRepeat(r, id, occurredAt, &out)

	case r.Missing.Has(id) && !confirmedElsewhere(set, owner, activeRouteID, id):
		r.Missing.Remove(id)
		r.Confirmed.Add(id)
		r.LastSeenAt[id] = occurredAt

		// Left over from scans made while another route held the confirmation.
		r.OutOfRoute.Remove(id)
		delete(r.DuplicateCounts, id)

		// Confirming makes this route the owner even when a tied manifest
		// earlier in iteration order was picked above.
		out.Kind = domain.OutcomeConfirmed
		out.OwnerRouteID = activeRouteID
		out.PurgedFrom = appendMissing(out.PurgedFrom, claim(set, activeRouteID, id))

	case r.OutOfRoute.Has(id):
		countRepeat(r, id, occurredAt, &out)

	default:
		r.OutOfRoute.Add(id)
		r.LastSeenAt[id] = occurredAt

		out.Kind = domain.OutcomeOutOfRoute
	}

	return out
}

// Scan normalizes raw scanner input and records it.
// Input that does not normalize is skipped as an invalid identifier.
func Scan(set *domain.RouteSet, activeRouteID string, raw string, occurredAt time.Time) domain.Outcome {
	id, ok := domain.NormalizeIdentifier(raw)
	if !ok {
		return domain.Outcome{
			Kind:    domain.OutcomeSkipped,
			Reason:  domain.SkipInvalidIdentifier,
			RouteID: activeRouteID,
		}
	}
	return Record(set, activeRouteID, id, occurredAt)
}

// countRepeat records another scan of an id the route already saw.
func countRepeat(r *domain.Route, id domain.Identifier, at time.Time, out *domain.Outcome) {
	prior := r.DuplicateCounts[id]
	if prior == 0 {
		prior = 1
	}
	r.DuplicateCounts[id] = prior + 1
	r.LastSeenAt[id] = at

	out.Kind = domain.OutcomeDuplicate
	out.PriorCount = prior
	out.Count = prior + 1
}

// claim purges id from the out-of-route set and duplicate counters of every
// route except ownerRouteID. A route left with no reference to id also forgets
// when it last saw it. It returns the routes that held residue.
func claim(set *domain.RouteSet, ownerRouteID string, id domain.Identifier) []string {
	var purged []string

	for _, other := range set.Routes() {
		if other.RouteID == ownerRouteID {
			continue
		}

		_, counted := other.DuplicateCounts[id]
		stale := counted || other.OutOfRoute.Has(id)

		other.OutOfRoute.Remove(id)
		delete(other.DuplicateCounts, id)

		if !other.Holds(id) {
			delete(other.LastSeenAt, id)
		}

		if stale {
			purged = append(purged, other.RouteID)
		}
	}

	return purged
}

// confirmedElsewhere reports whether the owner resolved for id is another
// route that already confirmed it.
func confirmedElsewhere(set *domain.RouteSet, owner, activeRouteID string, id domain.Identifier) bool {
	if owner == "" || owner == activeRouteID {
		return false
	}
	r, ok := set.Get(owner)
	return ok && r.Confirmed.Has(id)
}

func appendMissing(dst []string, src []string) []string {
	for _, s := range src {
		if !slices.Contains(dst, s) {
			dst = append(dst, s)
		}
	}
	return dst
}
