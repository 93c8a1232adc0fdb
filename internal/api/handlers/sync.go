package handlers

import (
	"net/http"
	"route-reconciliation-service/internal/api/dto"
)

type SyncHandler struct {
	Scopes *Scopes
}

// Status reports whether the scope's latest changes reached the store.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.Scopes.session(w, r)
	if !ok {
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewSyncStatus(sess.ScopeKey(), sess.SyncStatus()))
}
