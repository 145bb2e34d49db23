// Package session holds the per-tab viewer state: the deck and its
// gestures, the quote feed, the mirrored session storage and the signed-in
// identity.
//
// Every Session method takes the session lock, and every scheduled callback
// of the deck and feed runs under the same lock, so one session behaves like
// the single-threaded page it stands for.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jsamuelsen/quoteswipe/internal/app"
	"github.com/jsamuelsen/quoteswipe/internal/app/feed"
	"github.com/jsamuelsen/quoteswipe/internal/app/swipe"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
	"github.com/jsamuelsen/quoteswipe/internal/platform/cache"
	"github.com/jsamuelsen/quoteswipe/internal/platform/logging"
	"github.com/jsamuelsen/quoteswipe/internal/platform/sessionstore"
	"github.com/jsamuelsen/quoteswipe/internal/ports"
)

// ErrSuperseded is the cancellation cause of a translation replaced by a
// newer one.
var ErrSuperseded = errors.New("superseded by a newer request")

// Permalink kinds.
const (
	KindQuote     = "quote"
	KindUserQuote = "user-quote"
)

// Session is one viewer tab.
type Session struct {
	id      string
	created time.Time
	seen    atomic.Int64

	mu      sync.Mutex
	cfg     Config
	clock   cache.Clock
	sched   app.Scheduler
	logger  *slog.Logger
	store   *sessionstore.MemoryStorage
	deck    *swipe.Controller
	feed    *feed.Feed
	recent  sessionstore.RecentSearches
	viewer  ports.Viewer
	user    *domain.User
	expires time.Time

	path      string
	navLocked bool
	navTimer  app.Timer

	translateSeq    uint64
	translateCancel context.CancelCauseFunc
}

func newSession(id string, cfg Config, deps *Deps) *Session {
	s := &Session{
		id:      id,
		created: deps.Clock.Now(),
		cfg:     cfg,
		clock:   deps.Clock,
		logger:  deps.Logger.With(slog.String("session_id", id)),
		store:   sessionstore.NewMemoryStorage(cfg.StorageQuota),
		viewer:  ports.Viewer{SessionID: id},
		path:    "/",
	}
	s.sched = app.Serialized(deps.Scheduler, &s.mu)
	s.recent = sessionstore.NewRecentSearches(s.store)
	s.touch(s.created)

	s.deck = swipe.New(swipe.Options{
		Config:        cfg.Swipe,
		Scheduler:     s.sched,
		Promo:         sessionstore.NewPromoGate(s.store, deps.Clock, cfg.PromoCooldown),
		Sync:          deps.Sync,
		Metrics:       deps.Metrics,
		Logger:        s.logger,
		OnIndexChange: s.onIndexChange,
	})
	s.deck.SetViewer(s.viewer)

	s.feed = feed.New(feed.Options{
		Config:        cfg.Feed,
		Source:        deps.Quotes,
		Cache:         deps.Cache,
		Store:         s.store,
		Deck:          s.deck,
		Scheduler:     s.sched,
		Clock:         deps.Clock,
		Spawn:         deps.Spawn,
		FirstCategory: deps.FirstCategory,
		Metrics:       deps.Metrics,
	})

	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Store returns the session's mirrored storage.
func (s *Session) Store() sessionstore.Storage {
	return s.store
}

// Clock returns the clock mirror entries are stamped with.
func (s *Session) Clock() cache.Clock {
	return s.clock
}

// RecentSearches returns the viewer's recent search list.
func (s *Session) RecentSearches() sessionstore.RecentSearches {
	return s.recent
}

func (s *Session) touch(now time.Time) {
	s.seen.Store(now.UnixNano())
}

func (s *Session) lastSeen() time.Time {
	return time.Unix(0, s.seen.Load())
}

// Viewer returns who requests act for.
func (s *Session) Viewer() ports.Viewer {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.viewer
}

// User returns the signed-in user, or nil for a guest.
func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.user
}

// Credentials returns the upstream token and its expiry.
func (s *Session) Credentials() domain.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.Credentials{Token: s.viewer.Token, ExpiresAt: s.expires}
}

// Authenticated reports whether a user is signed in.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return !s.viewer.Anonymous()
}

// Context returns ctx carrying the session's viewer and logger fields.
func (s *Session) Context(ctx context.Context) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.contextLocked(ctx)
}

func (s *Session) contextLocked(ctx context.Context) context.Context {
	v := s.viewer
	ctx = ports.WithViewer(ctx, &v)

	return logging.WithContext(ctx, logging.FromContext(ctx).With(slog.String("session_id", s.id)))
}

// State is a renderable snapshot of the session.
type State struct {
	swipe.State

	Path          string
	CacheKey      string
	Selection     domain.CategorySelection
	Authenticated bool
	User          *domain.User
	Liked         int
}

func (s *Session) snapshot() State {
	return State{
		State:         s.deck.Snapshot(),
		Path:          s.path,
		CacheKey:      s.feed.Key(),
		Selection:     s.feed.Selection(),
		Authenticated: !s.viewer.Anonymous(),
		User:          s.user,
		Liked:         len(s.deck.Liked()),
	}
}

// Feed returns the session state, loading the deck on first use.
func (s *Session) Feed(ctx context.Context) (State, error) {
	s.mu.Lock()

	if s.feed.Loaded() {
		defer s.mu.Unlock()
		return s.snapshot(), nil
	}

	res, err := s.feed.Load(s.contextLocked(ctx), nil, feed.ReasonInitial)
	s.mu.Unlock()

	if err != nil {
		return State{}, err
	}

	return s.await(ctx, res)
}

// SetCategories switches the deck to sel. It returns once the new deck is
// shown, which on a cold cache includes the settle delay.
func (s *Session) SetCategories(ctx context.Context, sel domain.CategorySelection) (State, error) {
	s.mu.Lock()
	res, err := s.feed.Load(s.contextLocked(ctx), sel, feed.ReasonCategoryChange)
	s.mu.Unlock()

	if err != nil {
		return State{}, err
	}

	return s.await(ctx, res)
}

func (s *Session) await(ctx context.Context, res feed.Result) (State, error) {
	select {
	case <-res.Ready:
	case <-ctx.Done():
		return State{}, ctx.Err()
	}

	return s.State(), nil
}

// State returns the current snapshot without loading anything.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

// Action is the result of a deck operation.
type Action struct {
	Outcome swipe.Outcome
	State   State
}

func (s *Session) act(fn func() swipe.Outcome) Action {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := fn()

	return Action{Outcome: out, State: s.snapshot()}
}

// DragStart begins a drag on the current card.
func (s *Session) DragStart(x, y float64) Action {
	return s.act(func() swipe.Outcome {
		if s.deck.DragStart(x, y) {
			return swipe.OutcomeScheduled
		}

		return swipe.OutcomeIgnored
	})
}

// DragMove updates the drag offset.
func (s *Session) DragMove(x, y float64) Action {
	return s.act(func() swipe.Outcome {
		s.deck.DragMove(x, y)
		return swipe.OutcomeIgnored
	})
}

// DragEnd releases the drag.
func (s *Session) DragEnd() Action {
	return s.act(s.deck.DragEnd)
}

// Like swipes right from the button.
func (s *Session) Like() Action {
	return s.act(s.deck.Like)
}

// Dislike swipes left from the button.
func (s *Session) Dislike() Action {
	return s.act(s.deck.Dislike)
}

// Undo reverts the last swipe.
func (s *Session) Undo() Action {
	return s.act(func() swipe.Outcome {
		if s.deck.Undo() {
			return swipe.OutcomeScheduled
		}

		return swipe.OutcomeIgnored
	})
}

// DismissModal closes the auth or promo overlay.
func (s *Session) DismissModal() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deck.DismissModal()

	return s.snapshot()
}

// Liked returns the liked quotes.
func (s *Session) Liked() []domain.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deck.Liked()
}

// Path returns the client route of the displayed card.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.path
}

// OpenPermalink shows the quote named by a /quote/:id or /user-quote/:id
// link. Route updates from the deck are suppressed for the navigation lock
// window so the link's path is not overwritten.
func (s *Session) OpenPermalink(ctx context.Context, kind string, id domain.QuoteID) (State, error) {
	if _, err := s.Feed(ctx); err != nil {
		return State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.deck.Quotes().IndexOf(id)
	if index < 0 {
		return State{}, domain.NewNotFoundError("quote", id.String())
	}

	s.lockNavigation()

	if index != s.deck.Index() && !s.deck.Seek(index) {
		return State{}, domain.NewConflictError("quote", "a swipe is in progress")
	}

	s.path = "/" + kind + "/" + id.String()
	s.feed.Persist(ctx, index, s.path)

	return s.snapshot(), nil
}

func (s *Session) lockNavigation() {
	if s.navTimer != nil {
		s.navTimer.Stop()
	}

	s.navLocked = true
	s.navTimer = s.sched.AfterFunc(s.cfg.NavigationLock, func() {
		s.navLocked = false
		s.navTimer = nil
	})
}

// onIndexChange runs under the session lock whenever the deck moves.
func (s *Session) onIndexChange(index int, q *domain.Quote) {
	if !s.navLocked {
		s.path = "/"
		if q != nil {
			s.path = "/" + KindQuote + "/" + q.ID.String()
		}
	}

	s.feed.Persist(context.Background(), index, s.path)
}

// SignIn upgrades the session to the authenticated viewer and reloads the
// deck, keeping the current card when the new list still holds it.
func (s *Session) SignIn(ctx context.Context, res *domain.AuthResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := res.User
	s.user = &user
	s.expires = res.Credentials.ExpiresAt
	s.viewer = ports.Viewer{SessionID: s.id, UserID: user.ID, Token: res.Credentials.Token}
	s.deck.SetViewer(s.viewer)

	return s.reloadLocked(ctx, feed.ReasonLogin)
}

// SignOut downgrades the session to a guest and reloads the deck.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.expires = time.Time{}
	s.viewer = ports.Viewer{SessionID: s.id}
	s.deck.SetViewer(s.viewer)

	return s.reloadLocked(ctx, feed.ReasonLogout)
}

func (s *Session) reloadLocked(ctx context.Context, reason feed.Reason) error {
	if !s.feed.Loaded() {
		return nil
	}

	s.feed.SetLoggingIn(reason == feed.ReasonLogin)

	if _, err := s.feed.Reload(s.contextLocked(ctx), reason); err != nil {
		s.feed.SetLoggingIn(false)
		return err
	}

	return nil
}

// BeginTranslation returns a context for a translation request. Starting
// another translation cancels the previous one with ErrSuperseded. done
// releases the slot.
func (s *Session) BeginTranslation(ctx context.Context) (context.Context, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.translateCancel != nil {
		s.translateCancel(ErrSuperseded)
	}

	ctx, cancel := context.WithCancelCause(s.contextLocked(ctx))
	s.translateSeq++
	seq := s.translateSeq
	s.translateCancel = cancel

	return ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		cancel(nil)

		if s.translateSeq == seq {
			s.translateCancel = nil
		}
	}
}

// close stops pending timers and in-flight work.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.navTimer != nil {
		s.navTimer.Stop()
	}

	if s.translateCancel != nil {
		s.translateCancel(context.Canceled)
	}
}
