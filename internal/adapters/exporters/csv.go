package exporters

import (
	"encoding/csv"
	"fmt"
	"io"
	"route-reconciliation-service/internal/services"
	"strconv"
)

var routeCSVHeader = []string{"ID", "STATUS", "DUPLICATE_X"}

// WriteRouteCSV writes one route's export rows. DUPLICATE_X holds the number
// of extra scans as "<n>x" and stays empty when an identifier was scanned once.
func WriteRouteCSV(w io.Writer, rows []services.ExportRow) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(routeCSVHeader); err != nil {
		return fmt.Errorf("write route csv: header: %w", err)
	}

	for _, row := range rows {
		dup := ""
		if row.DuplicateExtra > 0 {
			dup = strconv.Itoa(row.DuplicateExtra) + "x"
		}
		if err := cw.Write([]string{string(row.Identifier), string(row.Status), dup}); err != nil {
			return fmt.Errorf("write route csv: row %q: %w", row.Identifier, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write route csv: flush: %w", err)
	}
	return nil
}

// RouteCSVFilename names a per-route export file.
func RouteCSVFilename(routeID string) string {
	return "route_" + sanitizeFilename(routeID) + ".csv"
}
