package handlers

import (
	"errors"
	"net/http"
	"route-reconciliation-service/internal/api/dto"
	"route-reconciliation-service/internal/domain"
	"route-reconciliation-service/internal/services"
	"route-reconciliation-service/internal/session"
	"strings"
)

type RouteHandler struct {
	Scopes *Scopes
}

// List returns a summary of every route in the scope, ordered by route id.
func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.Scopes.session(w, r)
	if !ok {
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ListRoutesResponse{
		Scope:  sess.ScopeKey(),
		Routes: dto.NewRouteSummaries(sess.Summaries()),
	})
}

// Clear drops every route of the scope.
func (h *RouteHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.Scopes.session(w, r)
	if !ok {
		return
	}

	// A failed delete shows up in the sync status and is retried as a save.
	_ = sess.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Get describes one route, annotating out-of-route identifiers with the route
// they belong to.
func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.Scopes.session(w, r)
	if !ok {
		return
	}

	d, found := sess.Describe(r.PathValue("routeID"))
	if !found {
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewRouteDetail(sess.ScopeKey(), d))
}

func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.Scopes.session(w, r)
	if !ok {
		return
	}

	if !sess.DeleteRoute(r.PathValue("routeID")) {
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PutManifest merges identifiers into a route's manifest, creating the route
// when needed.
func (h *RouteHandler) PutManifest(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.Scopes.session(w, r)
	if !ok {
		return
	}

	var req dto.ManifestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ids := make([]domain.Identifier, 0, len(req.IDs))
	for _, raw := range req.IDs {
		if id := strings.TrimSpace(raw); id != "" {
			ids = append(ids, domain.Identifier(id))
		}
	}
	ids = append(ids, services.ParseManualIdentifiers(req.Text)...)

	meta := services.ManifestMeta{
		ClusterLabel:    req.ClusterLabel,
		DestinationID:   req.DestinationID,
		DestinationName: req.DestinationName,
	}

	sum, err := sess.ImportRoute(r.PathValue("routeID"), ids, meta)
	switch {
	case errors.Is(err, session.ErrEmptyRouteID):
		writeError(w, r, http.StatusBadRequest, "route id is required")
		return
	case errors.Is(err, session.ErrEmptyManifest):
		writeError(w, r, http.StatusBadRequest, "ids or text must list at least one identifier")
		return
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewRouteSummary(sum))
}

// ImportHTML reads a saved route-listing page and imports every manifest in it.
func (h *RouteHandler) ImportHTML(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.Scopes.session(w, r)
	if !ok {
		return
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}

	n, err := sess.ImportHTML(string(body))
	if errors.Is(err, services.ErrNoManifestRoutes) {
		writeError(w, r, http.StatusUnprocessableEntity, "no routes found in page")
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ImportResponse{
		Imported: n,
		Routes:   dto.NewRouteSummaries(sess.Summaries()),
	})
}

// Merge folds route snapshots exported by another station into the scope.
func (h *RouteHandler) Merge(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.Scopes.session(w, r)
	if !ok {
		return
	}

	var snaps []domain.RouteSnapshot
	if !decodeJSON(w, r, &snaps) {
		return
	}

	n := sess.Merge(domain.RouteSetFromSnapshot(snaps))
	writeJSON(w, r, http.StatusOK, dto.MergeResponse{Routes: n})
}

// Snapshot returns the scope in its persisted shape, suitable for Merge.
func (h *RouteHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.Scopes.session(w, r)
	if !ok {
		return
	}

	writeJSON(w, r, http.StatusOK, sess.Snapshot())
}
