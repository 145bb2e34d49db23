package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quoteswipe/internal/app"
	"github.com/jsamuelsen/quoteswipe/internal/app/feed"
	"github.com/jsamuelsen/quoteswipe/internal/app/swipe"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
	"github.com/jsamuelsen/quoteswipe/internal/platform/cache"
	"github.com/jsamuelsen/quoteswipe/internal/platform/sessionstore"
	"github.com/jsamuelsen/quoteswipe/internal/platform/telemetry"
	"github.com/jsamuelsen/quoteswipe/internal/ports"
)

// ErrClosed is returned once the manager was shut down.
var ErrClosed = errors.New("session manager closed")

// Config configures sessions.
type Config struct {
	Swipe swipe.Config
	Feed  feed.Config

	IdleTimeout    time.Duration
	SweepInterval  time.Duration
	StorageQuota   int
	PromoCooldown  time.Duration
	NavigationLock time.Duration
}

// Deps are the collaborators shared by every session. Quotes and Cache are
// required.
type Deps struct {
	Quotes  ports.QuoteSource
	Content ports.ContentSource
	Cache   *cache.Cache
	Sync    swipe.Syncer

	// FirstCategory names the category a guest with no selection sees.
	FirstCategory func(ctx context.Context) string

	Scheduler app.Scheduler
	Clock     cache.Clock
	Spawn     func(func())
	Metrics   *telemetry.Collectors
	Logger    *slog.Logger
}

// Manager owns the live sessions.
type Manager struct {
	cfg  Config
	deps Deps

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
}

// NewManager creates a Manager.
func NewManager(cfg Config, deps Deps) *Manager {
	if deps.Quotes == nil || deps.Cache == nil {
		panic("session: quotes source and cache are required")
	}

	if deps.Scheduler == nil {
		deps.Scheduler = app.SystemScheduler{}
	}

	if deps.Clock == nil {
		deps.Clock = cache.SystemClock{}
	}

	if deps.Spawn == nil {
		deps.Spawn = func(fn func()) { go fn() }
	}

	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Manager{
		cfg:      cfg,
		deps:     deps,
		sessions: make(map[string]*Session),
	}
}

// Get returns the live session with id and marks it as seen.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if ok {
		s.touch(m.deps.Clock.Now())
	}

	return s, ok
}

// Resolve returns the session with id, or a new one when id is unknown.
// created reports whether a session was started.
func (m *Manager) Resolve(ctx context.Context, id string, info domain.VisitorInfo) (*Session, bool, error) {
	if id != "" {
		if existing, ok := m.Get(id); ok {
			return existing, false, nil
		}
	}

	s, err := m.Create(ctx, info)
	if err != nil {
		return nil, false, err
	}

	return s, true, nil
}

// Create starts a session and sends the visitor beacon for it.
func (m *Manager) Create(ctx context.Context, info domain.VisitorInfo) (*Session, error) {
	s := newSession(uuid.NewString(), m.cfg, &m.deps)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}

	m.sessions[s.id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.deps.Metrics.ActiveSessions(n)
	m.deps.Logger.DebugContext(ctx, "session created", slog.String("session_id", s.id))

	info.SessionID = s.id
	m.track(ctx, s, info)

	return s, nil
}

// track sends the visitor beacon once per session. Failures are logged
// and dropped.
func (m *Manager) track(ctx context.Context, s *Session, info domain.VisitorInfo) {
	if m.deps.Content == nil || sessionstore.VisitorTracked(s.store) {
		return
	}

	if err := sessionstore.MarkVisitorTracked(s.store); err != nil {
		return
	}

	bg := context.WithoutCancel(ctx)

	m.deps.Spawn(func() {
		if err := m.deps.Content.Track(bg, info); err != nil {
			m.deps.Logger.DebugContext(bg, "visitor tracking failed",
				slog.String("session_id", s.id),
				slog.Any("error", err),
			)
		}
	})
}

// Delete ends the session with id.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	if ok {
		s.close()
		m.deps.Metrics.ActiveSessions(n)
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// Sweep ends sessions idle for longer than the idle timeout and returns how
// many were removed.
func (m *Manager) Sweep() int {
	cutoff := m.deps.Clock.Now().Add(-m.cfg.IdleTimeout)

	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.lastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		s.close()
	}

	if len(expired) > 0 {
		m.deps.Metrics.ActiveSessions(n)
		m.deps.Logger.Debug("sessions expired", slog.Int("count", len(expired)))
	}

	return len(expired)
}

// Run sweeps idle sessions every SweepInterval until ctx ends.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Close ends every session and rejects new ones.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.closed = true
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}

	m.deps.Metrics.ActiveSessions(0)
}

// Name implements ports.HealthChecker.
func (m *Manager) Name() string {
	return "sessions"
}

// Check implements ports.HealthChecker.
func (m *Manager) Check(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}

	return nil
}
