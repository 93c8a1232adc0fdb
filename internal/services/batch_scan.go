package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"route-reconciliation-service/internal/domain"
	"strings"
	"time"
)

var (
	ErrUnknownRoute        = errors.New("unknown route")
	ErrEmptyCSV            = errors.New("csv is empty")
	ErrNoIdentifierColumn  = errors.New("no text, texto or id column in csv header")
	identifierColumnHeader = regexp.MustCompile(`(?i)(text|texto|id)`)
)

// ScanTally counts what a batch of scans produced.
type ScanTally struct {
	Rows       int
	Confirmed  int
	Duplicate  int
	OutOfRoute int
	Invalid    int
	Skipped    int
}

func (t *ScanTally) add(o domain.Outcome) {
	switch o.Kind {
	case domain.OutcomeConfirmed:
		t.Confirmed++
	case domain.OutcomeDuplicate:
		t.Duplicate++
	case domain.OutcomeOutOfRoute:
		t.OutOfRoute++
	case domain.OutcomeSkipped:
		if o.Reason == domain.SkipInvalidIdentifier {
			t.Invalid++
		} else {
			t.Skipped++
		}
	}
}

// ScanCSV replays a scanner export against one route.
//
// The first header column whose name contains text, texto or id holds the raw
// scans. Rows are scanned in file order; blank rows and rows too short to
// reach the column are ignored. now is consulted once per scan.
func ScanCSV(set *domain.RouteSet, routeID string, r io.Reader, now func() time.Time) (ScanTally, error) {
	var tally ScanTally

	if _, ok := set.Get(routeID); !ok {
		return tally, fmt.Errorf("scan csv: route %q: %w", routeID, ErrUnknownRoute)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return tally, fmt.Errorf("scan csv: %w", ErrEmptyCSV)
	}
	if err != nil {
		return tally, fmt.Errorf("scan csv: read header: %w", err)
	}

	col := -1
	for i, h := range header {
		if identifierColumnHeader.MatchString(h) {
			col = i
			break
		}
	}
	if col == -1 {
		return tally, fmt.Errorf("scan csv: %w", ErrNoIdentifierColumn)
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return tally, fmt.Errorf("scan csv: read row: %w", err)
		}
		if len(rec) <= col || strings.TrimSpace(rec[col]) == "" {
			continue
		}

		tally.Rows++
		tally.add(Scan(set, routeID, rec[col], now()))
	}

	return tally, nil
}
