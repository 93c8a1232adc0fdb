package repositories

import (
	"encoding/json"
	"fmt"
	"route-reconciliation-service/internal/domain"
)

type snapshotRow struct {
	RouteID string
	Payload []byte
}

// encodeRows serializes each route of the set in iteration order.
func encodeRows(set *domain.RouteSet) ([]snapshotRow, error) {
	snaps := set.Snapshot()
	rows := make([]snapshotRow, 0, len(snaps))
	for _, snap := range snaps {
		b, err := json.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("encode route %q: %w", snap.RouteID, err)
		}
		rows = append(rows, snapshotRow{RouteID: snap.RouteID, Payload: b})
	}
	return rows, nil
}

func decodeRows(rows []snapshotRow) (*domain.RouteSet, error) {
	snaps := make([]domain.RouteSnapshot, 0, len(rows))
	for _, row := range rows {
		var snap domain.RouteSnapshot
		if err := json.Unmarshal(row.Payload, &snap); err != nil {
			return nil, fmt.Errorf("decode route %q: %w", row.RouteID, err)
		}
		if snap.RouteID == "" {
			snap.RouteID = row.RouteID
		}
		snaps = append(snaps, snap)
	}
	return domain.RouteSetFromSnapshot(snaps), nil
}
