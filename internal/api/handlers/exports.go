package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"route-reconciliation-service/internal/adapters/exporters"
	"route-reconciliation-service/internal/platform/obs"
	"route-reconciliation-service/internal/session"
	"strconv"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	Scopes *Scopes
}

// RouteCSV downloads one route's identifiers with their status.
func (h *ExportHandler) RouteCSV(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.Scopes.session(w, r)
	if !ok {
		return
	}

	routeID := r.PathValue("routeID")
	rows, err := sess.ExportRoute(routeID)
	if errors.Is(err, session.ErrRouteNotFound) {
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}

	var buf bytes.Buffer
	if err == nil {
		err = exporters.WriteRouteCSV(&buf, rows)
	}
	if err != nil {
		obs.L().Errorw("route csv export failed", "req_id", obs.RequestID(r.Context()), "route_id", routeID, "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeAttachment(w, "text/csv; charset=utf-8", exporters.RouteCSVFilename(routeID), buf.Bytes())
}

// ScopeXLSX downloads a workbook with one column of confirmed ids per route.
func (h *ExportHandler) ScopeXLSX(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.Scopes.session(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := exporters.WriteRoutesXLSX(&buf, sess.ConfirmedColumns()); err != nil {
		obs.L().Errorw("xlsx export failed", "req_id", obs.RequestID(r.Context()), "scope", sess.ScopeKey(), "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeAttachment(w, xlsxContentType, exporters.ScopeXLSXFilename(sess.ScopeKey()), buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
