package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-reconciliation-service/internal/domain"
	"route-reconciliation-service/internal/platform/obs"
	"strings"
)

// SQLRouteSetStore is the Postgres-backed RouteSetStore. The schema comes from
// the embedded migrations (see MigrateUp).
type SQLRouteSetStore struct {
	DB *sql.DB
}

func NewSQLRouteSetStore(db *sql.DB) *SQLRouteSetStore {
	return &SQLRouteSetStore{DB: db}
}

func (s *SQLRouteSetStore) LoadRouteSet(ctx context.Context, scopeKey string) (_ *domain.RouteSet, err error) {
	defer obs.Time(ctx, "routes.sql.Load")(&err)

	if s.DB == nil {
		return nil, errors.New("route store: db is nil")
	}
	if strings.TrimSpace(scopeKey) == "" {
		return nil, errors.New("load route set: scope key must not be empty")
	}

	q := `
	SELECT route_id, payload::text
	FROM route_snapshots
	WHERE scope_key = $1
	ORDER BY position, route_id;
	`

	rows, err := s.DB.QueryContext(ctx, q, scopeKey)
	if err != nil {
		return nil, fmt.Errorf("load route set: query route_snapshots table: %w", err)
	}
	defer rows.Close()

	out := make([]snapshotRow, 0, 16)
	for rows.Next() {
		var routeID, payload string
		if err := rows.Scan(&routeID, &payload); err != nil {
			return nil, fmt.Errorf("load route set: scan rows: %w", err)
		}
		out = append(out, snapshotRow{RouteID: routeID, Payload: []byte(payload)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load route set: row iteration: %w", err)
	}

	set, err := decodeRows(out)
	if err != nil {
		return nil, fmt.Errorf("load route set: %w", err)
	}
	return set, nil
}

// SaveRouteSet upserts every route of the set and drops rows for routes that
// are no longer present.
func (s *SQLRouteSetStore) SaveRouteSet(ctx context.Context, scopeKey string, set *domain.RouteSet) (err error) {
	defer obs.Time(ctx, "routes.sql.Save")(&err)

	if s.DB == nil {
		return errors.New("route store: db is nil")
	}
	if strings.TrimSpace(scopeKey) == "" {
		return errors.New("save route set: scope key must not be empty")
	}

	rows, err := encodeRows(set)
	if err != nil {
		return fmt.Errorf("save route set: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save route set: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO route_snapshots (scope_key, route_id, position, payload, updated_at)
	VALUES ($1, $2, $3, $4::jsonb, now())
	ON CONFLICT (scope_key, route_id) DO UPDATE
	SET position = EXCLUDED.position,
		payload = EXCLUDED.payload,
		updated_at = EXCLUDED.updated_at;
	`)
	if err != nil {
		return fmt.Errorf("save route set: db prepare: %w", err)
	}
	defer stmt.Close()

	keep := make([]string, 0, len(rows))
	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, scopeKey, row.RouteID, i, string(row.Payload)); err != nil {
			return fmt.Errorf("save route set route=%q: %w", row.RouteID, err)
		}
		keep = append(keep, row.RouteID)
	}

	if _, err := tx.ExecContext(ctx, `
	DELETE FROM route_snapshots
	WHERE scope_key = $1
		AND NOT (route_id = ANY($2::text[]));
	`, scopeKey, keep); err != nil {
		return fmt.Errorf("save route set: prune removed routes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save route set commit: %w", err)
	}

	return nil
}

func (s *SQLRouteSetStore) DeleteRouteSet(ctx context.Context, scopeKey string) (err error) {
	defer obs.Time(ctx, "routes.sql.Delete")(&err)

	if s.DB == nil {
		return errors.New("route store: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM route_snapshots WHERE scope_key = $1;`, scopeKey); err != nil {
		return fmt.Errorf("delete route set: %w", err)
	}
	return nil
}
