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

// SQLite-backed implementation of the RouteSetStore port.
// Each route of a scope is one row holding its JSON snapshot.
type SqliteRouteSetStore struct{ DB *sql.DB }

func NewSqliteRouteSetStore(db *sql.DB) *SqliteRouteSetStore {
	return &SqliteRouteSetStore{DB: db}
}

// Return the route set stored under scopeKey. An unknown scope yields an empty set.
func (s *SqliteRouteSetStore) LoadRouteSet(ctx context.Context, scopeKey string) (_ *domain.RouteSet, err error) {
	defer obs.Time(ctx, "routes.sqlite.Load")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite route store: DB is nil")
	}
	if strings.TrimSpace(scopeKey) == "" {
		return nil, errors.New("load route set: scope key must not be empty")
	}

	query := `
	SELECT
		route_id,
		payload
	FROM route_snapshots
	WHERE scope_key = ?
	ORDER BY position, route_id;
	`
	rows, err := s.DB.QueryContext(ctx, query, scopeKey)
	if err != nil {
		return nil, fmt.Errorf("load route set: query route_snapshots table: %w", err)
	}
	defer rows.Close()

	out := make([]snapshotRow, 0, 16)
	for rows.Next() {
		var routeID, payload string
		if err := rows.Scan(&routeID, &payload); err != nil {
			return nil, fmt.Errorf("load route set: scan row: %w", err)
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

// Replace everything stored under scopeKey with the given set.
func (s *SqliteRouteSetStore) SaveRouteSet(ctx context.Context, scopeKey string, set *domain.RouteSet) (err error) {
	defer obs.Time(ctx, "routes.sqlite.Save")(&err)

	if s.DB == nil {
		return errors.New("sqlite route store: DB is nil")
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

	if _, err := tx.ExecContext(ctx, `DELETE FROM route_snapshots WHERE scope_key = ?;`, scopeKey); err != nil {
		return fmt.Errorf("save route set: clear scope: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO route_snapshots (
		scope_key,
		route_id,
		position,
		payload,
		updated_at
	)
	VALUES (?, ?, ?, ?, datetime('now'));
	`)
	if err != nil {
		return fmt.Errorf("save route set: db prepare: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, scopeKey, row.RouteID, i, string(row.Payload)); err != nil {
			return fmt.Errorf("save route set route=%q: %w", row.RouteID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save route set commit: %w", err)
	}
	return nil
}

func (s *SqliteRouteSetStore) DeleteRouteSet(ctx context.Context, scopeKey string) (err error) {
	defer obs.Time(ctx, "routes.sqlite.Delete")(&err)

	if s.DB == nil {
		return errors.New("sqlite route store: DB is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM route_snapshots WHERE scope_key = ?;`, scopeKey); err != nil {
		return fmt.Errorf("delete route set: %w", err)
	}
	return nil
}
