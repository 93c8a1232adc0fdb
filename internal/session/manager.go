package session

import (
	"context"
	"errors"
	"fmt"
	"route-reconciliation-service/internal/domain"
	"route-reconciliation-service/internal/platform/obs"
	"route-reconciliation-service/internal/ports"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type Options struct {
	// Quiet period after the last change before a save starts.
	SyncDebounce time.Duration
	// Attempts per save, including the first.
	SyncMaxAttempts int
	// Delay before the first retry; doubles on each further retry.
	SyncBackoff time.Duration
	// Wait before trying again once a save has used all its attempts.
	SyncRetryDelay time.Duration
	// Time allowed for the final flush once Run's context is done.
	FlushTimeout time.Duration
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.SyncMaxAttempts < 1 {
		o.SyncMaxAttempts = 4
	}
	if o.SyncBackoff <= 0 {
		o.SyncBackoff = 200 * time.Millisecond
	}
	if o.SyncRetryDelay <= 0 {
		o.SyncRetryDelay = 30 * time.Second
	}
	if o.FlushTimeout <= 0 {
		o.FlushTimeout = 10 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Manager hands out one Session per scope, loading it from the store on
// first use, and runs every session's syncer while Run is active.
type Manager struct {
	store ports.RouteSetStore
	opts  Options

	mu       sync.Mutex
	sessions map[string]*Session
	loading  map[string]*loadCall
	group    *errgroup.Group
	groupCtx context.Context
}

type loadCall struct {
	done chan struct{}
	sess *Session
	err  error
}

func NewManager(store ports.RouteSetStore, opts Options) *Manager {
	return &Manager{
		store:    store,
		opts:     opts.withDefaults(),
		sessions: make(map[string]*Session),
		loading:  make(map[string]*loadCall),
	}
}

// Session returns the session for scopeKey. Concurrent first calls for the
// same scope share a single store load.
func (m *Manager) Session(ctx context.Context, scopeKey string) (*Session, error) {
	scopeKey = strings.TrimSpace(scopeKey)
	if scopeKey == "" {
		return nil, errors.New("session: scope key must not be empty")
	}

	m.mu.Lock()
	if s, ok := m.sessions[scopeKey]; ok {
		m.mu.Unlock()
		return s, nil
	}
	if call, ok := m.loading[scopeKey]; ok {
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.sess, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &loadCall{done: make(chan struct{})}
	m.loading[scopeKey] = call
	m.mu.Unlock()

	call.sess, call.err = m.load(ctx, scopeKey)

	m.mu.Lock()
	delete(m.loading, scopeKey)
	if call.err == nil {
		m.sessions[scopeKey] = call.sess
		if m.group != nil {
			m.launch(call.sess)
		}
	}
	m.mu.Unlock()
	close(call.done)

	return call.sess, call.err
}

func (m *Manager) load(ctx context.Context, scopeKey string) (*Session, error) {
	set, err := m.store.LoadRouteSet(ctx, scopeKey)
	if err != nil {
		return nil, fmt.Errorf("session: load scope %q: %w", scopeKey, err)
	}
	if set == nil {
		set = domain.NewRouteSet()
	}

	s := newSession(scopeKey, set, m.opts, func(s *Session) *Syncer {
		return newSyncer(m.store, scopeKey, s.capture, m.opts)
	})
	obs.L().Infow("scope loaded", "scope", scopeKey, "routes", set.Len())
	return s, nil
}

// launch must be called with m.mu held.
func (m *Manager) launch(s *Session) {
	syncer := s.syncer
	ctx := m.groupCtx
	m.group.Go(func() error { return syncer.Run(ctx) })
}

// Scopes lists the loaded scope keys in order.
func (m *Manager) Scopes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.sessions))
	for k := range m.sessions {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Run keeps every syncer running until ctx is done, then flushes whatever is
// still pending.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.group != nil {
		m.mu.Unlock()
		return errors.New("session manager: already running")
	}
	m.group, m.groupCtx = errgroup.WithContext(ctx)
	for _, s := range m.sessions {
		m.launch(s)
	}
	m.mu.Unlock()

	<-ctx.Done()

	m.mu.Lock()
	group := m.group
	m.group, m.groupCtx = nil, nil
	m.mu.Unlock()

	runErr := group.Wait()

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.opts.FlushTimeout)
	defer cancel()

	return errors.Join(runErr, m.Flush(flushCtx))
}

// Flush saves every session with pending changes.
func (m *Manager) Flush(ctx context.Context) error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, s := range sessions {
		g.Go(func() error { return s.syncer.Flush(ctx) })
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("session manager: flush: %w", err)
	}
	return nil
}
