package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"route-reconciliation-service/internal/domain"
	"route-reconciliation-service/internal/platform/obs"
	"route-reconciliation-service/internal/session"
	"strings"
	"time"
)

// Upper bound for pasted pages and scanner exports.
const maxUploadBytes = 16 << 20

// SessionSource hands out the session of a scope.
type SessionSource interface {
	Session(ctx context.Context, scopeKey string) (*session.Session, error)
}

// Scopes resolves the {scope} path value. The value "today" expands to the
// configured operation on the current day.
type Scopes struct {
	Sessions  SessionSource
	Operation string
	Now       func() time.Time
}

func (s *Scopes) key(r *http.Request) string {
	scope := strings.TrimSpace(r.PathValue("scope"))
	if scope == "today" {
		now := time.Now
		if s.Now != nil {
			now = s.Now
		}
		return domain.ScopeKey(s.Operation, now())
	}
	return scope
}

func (s *Scopes) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	key := s.key(r)
	if key == "" {
		writeError(w, r, http.StatusBadRequest, "scope is required")
		return nil, false
	}

	sess, err := s.Sessions.Session(r.Context(), key)
	if err != nil {
		obs.L().Errorw("load scope failed", "req_id", obs.RequestID(r.Context()), "scope", key, "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	return sess, true
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		obs.L().Warnw("encode failed", "req_id", obs.RequestID(r.Context()), "method", r.Method, "path", r.URL.Path, "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// decodeJSON reads exactly one JSON value from the body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON value")
		return false
	}
	return true
}

// readBody reads a raw upload, answering 413 when it is too large.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	defer r.Body.Close()

	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "body too large")
			return nil, false
		}
		writeError(w, r, http.StatusBadRequest, "could not read body")
		return nil, false
	}
	return b, true
}
