package api

import (
	"net/http"
	"route-reconciliation-service/internal/api/handlers"
	"time"
)

type RouterOptions struct {
	// Operation used when a request names the scope "today".
	Operation string
	Now       func() time.Time
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(sessions handlers.SessionSource, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()

	scopes := &handlers.Scopes{
		Sessions:  sessions,
		Operation: opts.Operation,
		Now:       opts.Now,
	}
	routeHandler := &handlers.RouteHandler{Scopes: scopes}
	scanHandler := &handlers.ScanHandler{Scopes: scopes}
	exportHandler := &handlers.ExportHandler{Scopes: scopes}
	syncHandler := &handlers.SyncHandler{Scopes: scopes}

	mux.HandleFunc("GET /health", handlers.Health)

	mux.HandleFunc("GET /scopes/{scope}/routes", routeHandler.List)
	mux.HandleFunc("DELETE /scopes/{scope}/routes", routeHandler.Clear)
	mux.HandleFunc("POST /scopes/{scope}/manifests/html", routeHandler.ImportHTML)
	mux.HandleFunc("GET /scopes/{scope}/snapshot", routeHandler.Snapshot)
	mux.HandleFunc("POST /scopes/{scope}/merge", routeHandler.Merge)
	mux.HandleFunc("GET /scopes/{scope}/routes/{routeID}", routeHandler.Get)
	mux.HandleFunc("DELETE /scopes/{scope}/routes/{routeID}", routeHandler.Delete)
	mux.HandleFunc("PUT /scopes/{scope}/routes/{routeID}/manifest", routeHandler.PutManifest)

	mux.HandleFunc("POST /scopes/{scope}/routes/{routeID}/scans", scanHandler.Scan)
	mux.HandleFunc("POST /scopes/{scope}/routes/{routeID}/scans/csv", scanHandler.ScanCSV)

	mux.HandleFunc("GET /scopes/{scope}/routes/{routeID}/export.csv", exportHandler.RouteCSV)
	mux.HandleFunc("GET /scopes/{scope}/export.xlsx", exportHandler.ScopeXLSX)

	mux.HandleFunc("GET /scopes/{scope}/sync", syncHandler.Status)

	return loggingMiddleware(mux)
}
