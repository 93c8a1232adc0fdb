package domain

import (
	"strings"
	"time"
)

// DefaultOperation is used when a scope is built without an operation name.
const DefaultOperation = "default"

// ScopeKey names one reconciliation session: one operation on one working day.
// The engine treats the key as opaque.
func ScopeKey(operation string, day time.Time) string {
	op := strings.TrimSpace(operation)
	if op == "" {
		op = DefaultOperation
	}
	return op + ":" + day.Format(time.DateOnly)
}
