package services

import (
	"route-reconciliation-service/internal/domain"
	"slices"
	"strings"
	"time"
)

// ExportStatus is the per-identifier status written to reports.
type ExportStatus string

const (
	StatusConfirmed  ExportStatus = "CONFIRMED"
	StatusMissing    ExportStatus = "MISSING"
	StatusOutOfRoute ExportStatus = "OUT_OF_ROUTE"
	StatusDuplicate  ExportStatus = "DUPLICATE"
)

// ExportRow is one identifier of a route as consumed by report writers.
type ExportRow struct {
	Identifier     domain.Identifier
	Status         ExportStatus
	DuplicateExtra int
	LastSeenAt     time.Time
}

// ExportRoute projects a route into report rows, one per identifier it
// references, ordered by last scan time and then identifier. Never-scanned
// identifiers sort first.
//
// Confirmed wins over every other status. An out-of-route identifier scanned
// more than once is reported as a duplicate. DuplicateExtra counts scans
// beyond the first.
func ExportRoute(r *domain.Route) []ExportRow {
	ids := domain.NewIDSet()
	for _, s := range []domain.IDSet{r.Expected, r.Missing, r.Confirmed, r.OutOfRoute} {
		for id := range s {
			ids.Add(id)
		}
	}

	rows := make([]ExportRow, 0, ids.Len())
	for id := range ids {
		extra := max(0, r.DuplicateCounts[id]-1)

		var status ExportStatus
		switch {
		case r.Confirmed.Has(id):
			status = StatusConfirmed
		case r.OutOfRoute.Has(id) && extra > 0:
			status = StatusDuplicate
		case r.OutOfRoute.Has(id):
			status = StatusOutOfRoute
		default:
			status = StatusMissing
		}

		rows = append(rows, ExportRow{
			Identifier:     id,
			Status:         status,
			DuplicateExtra: extra,
			LastSeenAt:     r.LastSeenAt[id],
		})
	}

	slices.SortFunc(rows, func(a, b ExportRow) int {
		if c := a.LastSeenAt.Compare(b.LastSeenAt); c != 0 {
			return c
		}
		return strings.Compare(string(a.Identifier), string(b.Identifier))
	})

	return rows
}

// RouteColumn is one route's confirmed identifiers in scan order.
type RouteColumn struct {
	RouteID string
	Header  string
	IDs     []domain.Identifier
}

// ConfirmedColumns lays out every route of the set side by side, ordered by
// route id. Each column lists its confirmed identifiers by last scan time,
// then identifier.
func ConfirmedColumns(set *domain.RouteSet) []RouteColumn {
	routes := set.SortedRoutes()
	cols := make([]RouteColumn, 0, len(routes))

	for _, r := range routes {
		header := r.RouteID
		if c := strings.TrimSpace(r.ClusterLabel); c != "" {
			header = r.RouteID + "-" + c
		}

		ids := r.Confirmed.Sorted()
		slices.SortStableFunc(ids, func(a, b domain.Identifier) int {
			return r.LastSeenAt[a].Compare(r.LastSeenAt[b])
		})

		cols = append(cols, RouteColumn{RouteID: r.RouteID, Header: header, IDs: ids})
	}

	return cols
}
