package dto

import (
	"route-reconciliation-service/internal/services"
	"route-reconciliation-service/internal/session"
	"time"
)

type ScanRequest struct {
	Code string `json:"code"`
}

type ScanResponse struct {
	Kind           string                `json:"kind"`
	Reason         string                `json:"reason,omitempty"`
	RouteID        string                `json:"route_id"`
	ID             string                `json:"id,omitempty"`
	OwnerRouteID   string                `json:"owner_route_id,omitempty"`
	PriorCount     int                   `json:"prior_count,omitempty"`
	Count          int                   `json:"count,omitempty"`
	PurgedFrom     []string              `json:"purged_from,omitempty"`
	NeedsAttention bool                  `json:"needs_attention"`
	BelongsTo      *LocationResponse     `json:"belongs_to,omitempty"`
	Route          *RouteSummaryResponse `json:"route,omitempty"`
}

type ScanTallyResponse struct {
	Rows       int `json:"rows"`
	Confirmed  int `json:"confirmed"`
	Duplicate  int `json:"duplicate"`
	OutOfRoute int `json:"out_of_route"`
	Invalid    int `json:"invalid"`
	Skipped    int `json:"skipped"`
}

type SyncStatusResponse struct {
	Scope       string     `json:"scope"`
	Pending     bool       `json:"pending"`
	LastSavedAt *time.Time `json:"last_saved_at,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	LastErrorAt *time.Time `json:"last_error_at,omitempty"`
	Failures    int        `json:"consecutive_failures"`
}

func NewScanResponse(res session.ScanResult) ScanResponse {
	o := res.Outcome
	out := ScanResponse{
		Kind:           string(o.Kind),
		Reason:         string(o.Reason),
		RouteID:        o.RouteID,
		ID:             string(o.Identifier),
		OwnerRouteID:   o.OwnerRouteID,
		PriorCount:     o.PriorCount,
		Count:          o.Count,
		PurgedFrom:     o.PurgedFrom,
		NeedsAttention: o.NeedsAttention(),
		BelongsTo:      NewLocation(res.Location),
	}
	if res.Summary != nil {
		s := NewRouteSummary(*res.Summary)
		out.Route = &s
	}
	return out
}

func NewScanTally(t services.ScanTally) ScanTallyResponse {
	return ScanTallyResponse{
		Rows:       t.Rows,
		Confirmed:  t.Confirmed,
		Duplicate:  t.Duplicate,
		OutOfRoute: t.OutOfRoute,
		Invalid:    t.Invalid,
		Skipped:    t.Skipped,
	}
}

func NewSyncStatus(scope string, st session.SyncStatus) SyncStatusResponse {
	res := SyncStatusResponse{
		Scope:     scope,
		Pending:   st.Pending,
		LastError: st.LastError,
		Failures:  st.Failures,
	}
	if !st.LastSavedAt.IsZero() {
		t := st.LastSavedAt
		res.LastSavedAt = &t
	}
	if !st.LastErrorAt.IsZero() {
		t := st.LastErrorAt
		res.LastErrorAt = &t
	}
	return res
}
