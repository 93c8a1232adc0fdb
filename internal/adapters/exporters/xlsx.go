package exporters

import (
	"fmt"
	"io"
	"route-reconciliation-service/internal/services"
	"unicode"

	"github.com/xuri/excelize/v2"
)

const (
	ScansSheet   = "Scans"
	columnWidth  = 18
	defaultSheet = "Sheet1"
)

// WriteRoutesXLSX writes a workbook with a single sheet holding one column per
// route: the header in row 1 and the confirmed identifiers below it.
func WriteRoutesXLSX(w io.Writer, cols []services.RouteColumn) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(defaultSheet, ScansSheet); err != nil {
		return fmt.Errorf("write routes xlsx: rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("write routes xlsx: header style: %w", err)
	}

	for i, col := range cols {
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("write routes xlsx: column %d: %w", i+1, err)
		}

		header := colName + "1"
		if err := f.SetCellStr(ScansSheet, header, col.Header); err != nil {
			return fmt.Errorf("write routes xlsx: header %q: %w", col.Header, err)
		}
		if err := f.SetCellStyle(ScansSheet, header, header, headerStyle); err != nil {
			return fmt.Errorf("write routes xlsx: style header %q: %w", col.Header, err)
		}

		for j, id := range col.IDs {
			cell := fmt.Sprintf("%s%d", colName, j+2)
			if err := f.SetCellStr(ScansSheet, cell, string(id)); err != nil {
				return fmt.Errorf("write routes xlsx: cell %s: %w", cell, err)
			}
		}

		if err := f.SetColWidth(ScansSheet, colName, colName, columnWidth); err != nil {
			return fmt.Errorf("write routes xlsx: width %s: %w", colName, err)
		}
	}

	if err := f.SetPanes(ScansSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("write routes xlsx: freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write routes xlsx: %w", err)
	}
	return nil
}

// ScopeXLSXFilename names the all-routes workbook of a scope.
func ScopeXLSXFilename(scopeKey string) string {
	return "scans_" + sanitizeFilename(scopeKey) + ".xlsx"
}

// sanitizeFilename makes s safe inside a quoted Content-Disposition filename.
func sanitizeFilename(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch {
		case r == ':', r == '/', r == '\\', r == ' ', r == '"', unicode.IsControl(r):
			out[i] = '_'
		}
	}
	return string(out)
}
