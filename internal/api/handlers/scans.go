package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"route-reconciliation-service/internal/api/dto"
	"route-reconciliation-service/internal/services"
)

type ScanHandler struct {
	Scopes *Scopes
}

// Scan records one scanner read against the route in the path.
// Unusable reads come back as 200 with kind "skipped"; scanning never fails.
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.Scopes.session(w, r)
	if !ok {
		return
	}

	var req dto.ScanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res := sess.Scan(r.PathValue("routeID"), req.Code)
	writeJSON(w, r, http.StatusOK, dto.NewScanResponse(res))
}

// ScanCSV replays a scanner export file against the route in the path.
func (h *ScanHandler) ScanCSV(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.Scopes.session(w, r)
	if !ok {
		return
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}

	tally, err := sess.ScanCSV(r.PathValue("routeID"), bytes.NewReader(body))
	switch {
	case errors.Is(err, services.ErrUnknownRoute):
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	case errors.Is(err, services.ErrEmptyCSV), errors.Is(err, services.ErrNoIdentifierColumn):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		writeError(w, r, http.StatusBadRequest, "could not read csv")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewScanTally(tally))
}
