package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"route-reconciliation-service/internal/domain"
	"route-reconciliation-service/internal/services"
	"strings"
	"sync"
	"time"
)

var (
	ErrEmptyRouteID  = errors.New("route id must not be empty")
	ErrEmptyManifest = errors.New("manifest has no identifiers")
	ErrRouteNotFound = errors.New("route not found")
)

// ScanResult is a scan outcome detached from the live route set.
type ScanResult struct {
	Outcome domain.Outcome

	// Progress of the active route after the scan; nil when skipped.
	Summary *domain.RouteSummary

	// Where an out-of-route identifier actually belongs, when known.
	Location *domain.Location
}

// Session owns the route set of one scope. All access goes through its
// mutex; every mutation notifies the syncer.
type Session struct {
	scopeKey string
	now      func() time.Time

	mu     sync.Mutex
	set    *domain.RouteSet
	syncer *Syncer
}

func newSession(scopeKey string, set *domain.RouteSet, opts Options, syncerFor func(*Session) *Syncer) *Session {
	s := &Session{scopeKey: scopeKey, now: opts.Now, set: set}
	s.syncer = syncerFor(s)
	return s
}

func (s *Session) ScopeKey() string { return s.scopeKey }

func (s *Session) Syncer() *Syncer { return s.syncer }

func (s *Session) SyncStatus() SyncStatus { return s.syncer.Status() }

// capture returns a copy of the route set safe to serialize without the lock.
func (s *Session) capture() *domain.RouteSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Clone()
}

// Scan normalizes raw scanner input and records it against routeID.
func (s *Session) Scan(routeID, raw string) ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := services.Scan(s.set, routeID, raw, s.now())
	return s.detach(out)
}

func (s *Session) detach(out domain.Outcome) ScanResult {
	res := ScanResult{Outcome: out}
	res.Outcome.Route = nil

	if out.Skipped() {
		return res
	}

	if out.Route != nil {
		sum := out.Route.Summary()
		res.Summary = &sum

		if out.Route.OutOfRoute.Has(out.Identifier) {
			if loc, ok := s.set.Locate(out.Identifier, out.RouteID); ok {
				res.Location = &loc
			}
		}
	}

	s.syncer.Notify()
	return res
}

// ScanCSV replays a scanner export. The body is read before the lock is taken.
func (s *Session) ScanCSV(routeID string, r io.Reader) (services.ScanTally, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return services.ScanTally{}, fmt.Errorf("scan csv: read body: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tally, err := services.ScanCSV(s.set, routeID, bytes.NewReader(body), s.now)
	if tally.Rows > 0 {
		s.syncer.Notify()
	}
	return tally, err
}

// ImportRoute merges ids into one route's manifest, creating the route if needed.
func (s *Session) ImportRoute(routeID string, ids []domain.Identifier, meta services.ManifestMeta) (domain.RouteSummary, error) {
	routeID = strings.TrimSpace(routeID)
	if routeID == "" {
		return domain.RouteSummary{}, ErrEmptyRouteID
	}
	if len(ids) == 0 {
		return domain.RouteSummary{}, ErrEmptyManifest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := services.ImportIdentifiers(s.set.GetOrCreate(routeID), ids, meta)
	s.syncer.Notify()
	return r.Summary(), nil
}

// ImportHTML extracts every route manifest from a saved route-listing page.
func (s *Session) ImportHTML(raw string) (int, error) {
	manifests, err := services.ParseManifestHTML(raw)
	if err != nil {
		return 0, err
	}
	return s.ImportManifests(manifests), nil
}

func (s *Session) ImportManifests(manifests []services.Manifest) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := services.ImportManifests(s.set, manifests)
	if n > 0 {
		s.syncer.Notify()
	}
	return n
}

// Merge folds a route set captured elsewhere into this session.
func (s *Session) Merge(other *domain.RouteSet) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if other == nil || other.Len() == 0 {
		return s.set.Len()
	}

	s.set = services.MergeRouteSets(s.set, other)
	s.syncer.Notify()
	return s.set.Len()
}

func (s *Session) DeleteRoute(routeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.set.Delete(routeID) {
		return false
	}
	s.syncer.Notify()
	return true
}

// Clear drops every route and deletes the scope from the store. The session
// is empty even when the delete fails; the syncer then saves the empty set.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.set.Clear()
	mark := s.syncer.Notify()
	s.mu.Unlock()

	return s.syncer.Reset(ctx, mark)
}

func (s *Session) Summaries() []domain.RouteSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return services.Summaries(s.set)
}

func (s *Session) Describe(routeID string) (services.RouteDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return services.DescribeRoute(s.set, routeID)
}

func (s *Session) ExportRoute(routeID string) ([]services.ExportRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.set.Get(routeID)
	if !ok {
		return nil, fmt.Errorf("export route %q: %w", routeID, ErrRouteNotFound)
	}
	return services.ExportRoute(r), nil
}

func (s *Session) ConfirmedColumns() []services.RouteColumn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return services.ConfirmedColumns(s.set)
}

func (s *Session) Snapshot() []domain.RouteSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Snapshot()
}
