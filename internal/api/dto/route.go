package dto

import (
	"route-reconciliation-service/internal/domain"
	"route-reconciliation-service/internal/services"
)

type RouteSummaryResponse struct {
	RouteID         string `json:"route_id"`
	Label           string `json:"label"`
	ClusterLabel    string `json:"cluster_label,omitempty"`
	DestinationID   string `json:"destination_id,omitempty"`
	DestinationName string `json:"destination_name,omitempty"`
	ExpectedTotal   int    `json:"expected_total"`
	Confirmed       int    `json:"confirmed"`
	Missing         int    `json:"missing"`
	OutOfRoute      int    `json:"out_of_route"`
	Duplicates      int    `json:"duplicates"`
	ProgressPercent int    `json:"progress_percent"`
}

type ListRoutesResponse struct {
	Scope  string                 `json:"scope"`
	Routes []RouteSummaryResponse `json:"routes"`
}

type LocationResponse struct {
	Where        string `json:"where"`
	RouteID      string `json:"route_id"`
	ClusterLabel string `json:"cluster_label,omitempty"`
}

type OutOfRouteResponse struct {
	ID        string            `json:"id"`
	BelongsTo *LocationResponse `json:"belongs_to,omitempty"`
}

type DuplicateResponse struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

type RouteDetailResponse struct {
	Scope      string               `json:"scope"`
	Summary    RouteSummaryResponse `json:"summary"`
	Confirmed  []string             `json:"confirmed"`
	Missing    []string             `json:"missing"`
	OutOfRoute []OutOfRouteResponse `json:"out_of_route"`
	Duplicates []DuplicateResponse  `json:"duplicates"`
}

// ManifestRequest replaces nothing: ids and text are merged into the route's
// manifest. Text is split on whitespace, commas and semicolons.
type ManifestRequest struct {
	IDs             []string `json:"ids"`
	Text            string   `json:"text"`
	ClusterLabel    string   `json:"cluster_label"`
	DestinationID   string   `json:"destination_id"`
	DestinationName string   `json:"destination_name"`
}

type ImportResponse struct {
	Imported int                    `json:"imported"`
	Routes   []RouteSummaryResponse `json:"routes"`
}

type MergeResponse struct {
	Routes int `json:"routes"`
}

func NewRouteSummary(s domain.RouteSummary) RouteSummaryResponse {
	return RouteSummaryResponse{
		RouteID:         s.RouteID,
		Label:           s.Label,
		ClusterLabel:    s.ClusterLabel,
		DestinationID:   s.DestinationID,
		DestinationName: s.DestinationName,
		ExpectedTotal:   s.ExpectedTotal,
		Confirmed:       s.Confirmed,
		Missing:         s.Missing,
		OutOfRoute:      s.OutOfRoute,
		Duplicates:      s.Duplicates,
		ProgressPercent: s.ProgressPercent,
	}
}

func NewRouteSummaries(in []domain.RouteSummary) []RouteSummaryResponse {
	out := make([]RouteSummaryResponse, 0, len(in))
	for _, s := range in {
		out = append(out, NewRouteSummary(s))
	}
	return out
}

func NewLocation(loc *domain.Location) *LocationResponse {
	if loc == nil {
		return nil
	}
	return &LocationResponse{
		Where:        string(loc.Where),
		RouteID:      loc.RouteID,
		ClusterLabel: loc.ClusterLabel,
	}
}

func NewRouteDetail(scope string, d services.RouteDetail) RouteDetailResponse {
	res := RouteDetailResponse{
		Scope:      scope,
		Summary:    NewRouteSummary(d.Summary),
		Confirmed:  identifiers(d.Confirmed),
		Missing:    identifiers(d.Missing),
		OutOfRoute: make([]OutOfRouteResponse, 0, len(d.OutOfRoute)),
		Duplicates: make([]DuplicateResponse, 0, len(d.Duplicates)),
	}
	for _, e := range d.OutOfRoute {
		res.OutOfRoute = append(res.OutOfRoute, OutOfRouteResponse{ID: string(e.Identifier), BelongsTo: NewLocation(e.Location)})
	}
	for _, e := range d.Duplicates {
		res.Duplicates = append(res.Duplicates, DuplicateResponse{ID: string(e.Identifier), Count: e.Count})
	}
	return res
}

func identifiers(ids []domain.Identifier) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}
