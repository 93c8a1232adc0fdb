package session

import (
	"context"
	"errors"
	"fmt"
	"route-reconciliation-service/internal/domain"
	"route-reconciliation-service/internal/platform/obs"
	"route-reconciliation-service/internal/ports"
	"sync"
	"time"
)

// SyncStatus reports how far persistence lags behind in-memory state.
// A failed save is a warning only; the session keeps working.
type SyncStatus struct {
	Pending     bool
	LastSavedAt time.Time
	LastError   string
	LastErrorAt time.Time
	Failures    int
}

// Syncer persists one scope's route set in the background. Notify marks the
// set dirty; Run saves it once changes settle for the debounce interval.
type Syncer struct {
	store       ports.RouteSetStore
	scopeKey    string
	capture     func() *domain.RouteSet
	debounce    time.Duration
	maxAttempts int
	backoff     time.Duration
	retryDelay  time.Duration
	now         func() time.Time

	wake   chan struct{}
	saveMu sync.Mutex

	mu     sync.Mutex
	gen    uint64
	saved  uint64
	status SyncStatus
}

func newSyncer(store ports.RouteSetStore, scopeKey string, capture func() *domain.RouteSet, opts Options) *Syncer {
	return &Syncer{
		store:       store,
		scopeKey:    scopeKey,
		capture:     capture,
		debounce:    opts.SyncDebounce,
		maxAttempts: max(opts.SyncMaxAttempts, 1),
		backoff:     opts.SyncBackoff,
		retryDelay:  opts.SyncRetryDelay,
		now:         opts.Now,
		wake:        make(chan struct{}, 1),
	}
}

// Notify records that the route set changed and returns the new change
// generation. It never blocks.
func (s *Syncer) Notify() uint64 {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.status.Pending = true
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return gen
}

// Run saves after each burst of notifications until ctx is done.
// Save failures are recorded in Status and do not stop the loop; a failed
// save is tried again after the retry delay even if nothing else changes.
func (s *Syncer) Run(ctx context.Context) error {
	var retry *time.Timer
	var retryC <-chan time.Time
	defer func() {
		if retry != nil {
			retry.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.wake:
		case <-retryC:
		}

		if retry != nil {
			retry.Stop()
			retry, retryC = nil, nil
		}

		if s.debounce > 0 {
			timer := time.NewTimer(s.debounce)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
		}

		// Notifications that arrived while waiting are covered by this save.
		select {
		case <-s.wake:
		default:
		}

		if err := s.sync(ctx); err != nil && ctx.Err() == nil {
			retry = time.NewTimer(s.retryDelay)
			retryC = retry.C
		}
	}
}

// Flush saves pending changes now.
func (s *Syncer) Flush(ctx context.Context) error {
	return s.sync(ctx)
}

func (s *Syncer) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Syncer) sync(ctx context.Context) (err error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	gen := s.gen
	dirty := gen != s.saved
	s.mu.Unlock()

	if !dirty {
		return nil
	}

	set := s.capture()
	err = s.saveWithRetry(ctx, set)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.failedLocked(err)
		obs.L().Warnw("route set sync failed", "scope", s.scopeKey, "failures", s.status.Failures, "err", err)
		return err
	}

	s.savedLocked(gen)
	obs.L().Debugw("route set synced", "scope", s.scopeKey, "routes", set.Len())
	return nil
}

// Reset deletes the stored route set. mark is the generation returned by the
// Notify that emptied the set; once the delete succeeds that generation
// counts as saved. On failure the empty set stays pending and is saved later.
func (s *Syncer) Reset(ctx context.Context, mark uint64) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	err := s.store.DeleteRouteSet(ctx, s.scopeKey)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		err = fmt.Errorf("delete scope %q: %w", s.scopeKey, err)
		s.failedLocked(err)
		obs.L().Warnw("route set delete failed", "scope", s.scopeKey, "failures", s.status.Failures, "err", err)
		return err
	}

	s.savedLocked(mark)
	obs.L().Debugw("route set deleted", "scope", s.scopeKey)
	return nil
}

func (s *Syncer) failedLocked(err error) {
	s.status.LastError = err.Error()
	s.status.LastErrorAt = s.now()
	s.status.Failures++
}

func (s *Syncer) savedLocked(gen uint64) {
	s.saved = max(s.saved, gen)
	s.status.Pending = s.gen != s.saved
	s.status.LastSavedAt = s.now()
	s.status.LastError = ""
	s.status.LastErrorAt = time.Time{}
	s.status.Failures = 0
}

// saveWithRetry retries failed saves with exponential backoff while
// respecting context cancellation.
func (s *Syncer) saveWithRetry(ctx context.Context, set *domain.RouteSet) error {
	backoff := s.backoff
	var lastErr error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.store.SaveRouteSet(ctx, s.scopeKey, set)
		if err == nil {
			return nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || attempt == s.maxAttempts {
			break
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return fmt.Errorf("save scope %q: %w", s.scopeKey, lastErr)
}
