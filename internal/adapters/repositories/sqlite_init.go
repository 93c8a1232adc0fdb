package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"route-reconciliation-service/internal/domain"
	"route-reconciliation-service/internal/ports"
	"route-reconciliation-service/internal/services"
	"strings"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRouteSnapshotsQuery := `
	CREATE TABLE IF NOT EXISTS route_snapshots (
		scope_key TEXT NOT NULL,
		route_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		payload TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (scope_key, route_id)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_snapshots_scope_position
	ON route_snapshots(scope_key, position);
	`

	statements := []string{
		createRouteSnapshotsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type ManifestSeed struct {
	RouteID         string   `json:"route_id"`
	ClusterLabel    string   `json:"cluster_label"`
	DestinationID   string   `json:"destination_id"`
	DestinationName string   `json:"destination_name"`
	IDs             []string `json:"ids"`
}

// Import route manifests from a JSON file into a scope and persist the result.
// Existing scan state of the scope is kept; seeding twice is harmless.
func SeedFromJSON(ctx context.Context, store ports.RouteSetStore, scopeKey string, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed manifests: read %q: %w", jsonPath, err)
	}

	var data []ManifestSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed manifests: parse json: %w", err)
	}

	manifests := make([]services.Manifest, 0, len(data))
	for i, item := range data {
		routeID := strings.TrimSpace(item.RouteID)
		if routeID == "" {
			return 0, fmt.Errorf("seed manifests: item at index %d: route_id cannot be empty", i+1)
		}

		ids := make([]domain.Identifier, 0, len(item.IDs))
		for _, raw := range item.IDs {
			if id := strings.TrimSpace(raw); id != "" {
				ids = append(ids, domain.Identifier(id))
			}
		}

		manifests = append(manifests, services.Manifest{
			RouteID: routeID,
			Meta: services.ManifestMeta{
				ClusterLabel:    item.ClusterLabel,
				DestinationID:   item.DestinationID,
				DestinationName: item.DestinationName,
			},
			IDs: ids,
		})
	}

	set, err := store.LoadRouteSet(ctx, scopeKey)
	if err != nil {
		return 0, fmt.Errorf("seed manifests: %w", err)
	}

	imported := services.ImportManifests(set, manifests)

	if err := store.SaveRouteSet(ctx, scopeKey, set); err != nil {
		return 0, fmt.Errorf("seed manifests: %w", err)
	}

	return imported, nil
}
