// Package swipe orchestrates swipes on a viewer's quote deck: optimistic
// likes and dislikes, guest and promo gating, the commit animation and undo.
package swipe

import (
	"log/slog"
	"time"

	"github.com/jsamuelsen/quoteswipe/internal/app"
	"github.com/jsamuelsen/quoteswipe/internal/app/syncqueue"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
	"github.com/jsamuelsen/quoteswipe/internal/platform/telemetry"
	"github.com/jsamuelsen/quoteswipe/internal/ports"
)

// Outcome is what a swipe request resulted in.
type Outcome string

const (
	// OutcomeIgnored means nothing happened: a snap-back, an empty deck or a
	// request made while another gesture was running.
	OutcomeIgnored Outcome = "ignored"

	// OutcomeScheduled means a button swipe started its animation and will
	// commit after the button delay.
	OutcomeScheduled Outcome = "scheduled"

	// OutcomeCommitted means the swipe was recorded and the deck advances
	// after the commit delay.
	OutcomeCommitted Outcome = telemetry.OutcomeCommitted

	// OutcomeGatedAuth means the guest limit was reached. Nothing was recorded.
	OutcomeGatedAuth Outcome = telemetry.OutcomeGatedAuth

	// OutcomeGatedPromo means the promo interrupted the swipe. Nothing was
	// recorded.
	OutcomeGatedPromo Outcome = telemetry.OutcomeGatedPromo
)

// Config holds the gesture thresholds, gates and animation timings.
type Config struct {
	Threshold     float64
	GuestLimit    int
	PromoInterval int
	HistoryDepth  int
	ButtonOffset  float64
	UndoOffset    float64
	CommitDelay   time.Duration
	ButtonDelay   time.Duration
	UndoDelay     time.Duration
}

// Syncer delivers authenticated swipe outcomes upstream.
type Syncer interface {
	Enqueue(job syncqueue.Job) bool
}

// Options are the Controller dependencies. Scheduler is required.
type Options struct {
	Config Config

	Scheduler app.Scheduler
	Promo     ports.PromoGate
	Sync      Syncer
	Metrics   *telemetry.Collectors
	Logger    *slog.Logger

	// OnIndexChange is called whenever the displayed card changes.
	OnIndexChange func(index int, quote *domain.Quote)
}

// Controller owns the deck and gesture state of one viewer.
//
// Controller is not safe for concurrent use. The owning session serializes
// calls and must hand in a Scheduler whose callbacks take the same lock.
type Controller struct {
	cfg     Config
	tracker *domain.GestureTracker
	sched   app.Scheduler
	promo   ports.PromoGate
	sync    Syncer
	metrics *telemetry.Collectors
	logger  *slog.Logger
	onIndex func(int, *domain.Quote)

	quotes domain.QuoteList
	index  int

	liked    *domain.QuoteSet
	disliked *domain.QuoteSet
	saved    *domain.QuoteSet

	lastLiked     *domain.Quote
	lastLikeAdded bool

	// counts holds the upstream counts of every card swiped since the deck
	// was loaded, before the optimistic bump.
	counts map[domain.QuoteID]voteCounts

	guestSwipes int
	swipes      int
	modal       domain.Modal
	viewer      ports.Viewer

	pending app.Timer
}

// New creates a controller for a guest viewer with an empty deck.
func New(opts Options) *Controller {
	if opts.Scheduler == nil {
		panic("swipe: scheduler is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		cfg:      opts.Config,
		tracker:  domain.NewGestureTracker(opts.Config.HistoryDepth),
		sched:    opts.Scheduler,
		promo:    opts.Promo,
		sync:     opts.Sync,
		metrics:  opts.Metrics,
		logger:   logger,
		onIndex:  opts.OnIndexChange,
		liked:    domain.NewQuoteSet(),
		disliked: domain.NewQuoteSet(),
		saved:    domain.NewQuoteSet(),
		counts:   make(map[domain.QuoteID]voteCounts),
	}
}

type voteCounts struct{ likes, dislikes int }

// SetOnIndexChange replaces the card-change hook.
func (c *Controller) SetOnIndexChange(fn func(int, *domain.Quote)) {
	c.onIndex = fn
}

// Quotes returns the displayed deck.
func (c *Controller) Quotes() domain.QuoteList {
	return c.quotes
}

// Index returns the position of the displayed card.
func (c *Controller) Index() int {
	return c.index
}

// Current returns the displayed card, or nil for an empty deck.
func (c *Controller) Current() *domain.Quote {
	if c.index < 0 || c.index >= len(c.quotes) {
		return nil
	}

	q := c.quotes[c.index]

	return &q
}

// Idle reports whether no gesture or animation is running.
func (c *Controller) Idle() bool {
	return c.tracker.IsIdle() && c.pending == nil
}

// Authenticated reports whether swipes are made by a signed-in viewer.
func (c *Controller) Authenticated() bool {
	return !c.viewer.Anonymous()
}

// SetViewer switches the identity swipes are synced with. Signing in clears
// the guest gate; signing out drops the guest-only collections.
func (c *Controller) SetViewer(v ports.Viewer) {
	was := c.Authenticated()
	c.viewer = v

	switch now := c.Authenticated(); {
	case now && !was:
		c.guestSwipes = 0
		if c.modal == domain.ModalAuth {
			c.modal = domain.ModalNone
		}
	case !now && was:
		c.swipes = 0
		c.forget(false)
	}
}

// Replace swaps the deck and positions it at index. Running animations are
// cancelled and the undo history is dropped since its positions refer to the
// old deck.
func (c *Controller) Replace(quotes domain.QuoteList, index int) {
	c.stopPending()
	c.tracker.Reset()
	c.tracker.ClearHistory()
	c.lastLiked = nil

	c.quotes = quotes
	c.index = 0
	clear(c.counts)

	if len(quotes) > 0 {
		c.index = min(max(index, 0), len(quotes)-1)
	}

	for i := range c.quotes {
		c.reconcile(&c.quotes[i])
	}

	c.notify()
}

// reconcile merges upstream flags and local collections for q.
func (c *Controller) reconcile(q *domain.Quote) {
	if q.IsLiked {
		c.liked.Add(*q)
	}

	if q.IsDisliked {
		c.disliked.Add(*q)
	}

	if q.IsSaved {
		c.saved.Add(*q)
	}

	q.IsLiked = c.liked.Has(q.ID)
	q.IsDisliked = !q.IsLiked && c.disliked.Has(q.ID)
	q.IsSaved = c.saved.Has(q.ID)
}

// Seek shows the card at index without recording a swipe. It reports false
// when index is out of range or a gesture is running.
func (c *Controller) Seek(index int) bool {
	if index < 0 || index >= len(c.quotes) || !c.Idle() {
		return false
	}

	c.index = index
	c.notify()

	return true
}

// DragStart begins a pointer drag.
func (c *Controller) DragStart(x, y float64) bool {
	if len(c.quotes) == 0 || c.pending != nil {
		return false
	}

	return c.tracker.DragStart(x, y)
}

// DragMove updates the drag offset.
func (c *Controller) DragMove(x, y float64) domain.Offset {
	return c.tracker.DragMove(x, y)
}

// DragEnd releases the drag, committing a swipe when the offset crossed the
// threshold.
func (c *Controller) DragEnd() Outcome {
	dir := c.tracker.DragEnd(c.cfg.Threshold)
	if dir == nil {
		return OutcomeIgnored
	}

	return c.HandleSwipe(*dir)
}

// Like swipes the current card right from a button.
func (c *Controller) Like() Outcome {
	return c.button(domain.SwipeRight)
}

// Dislike swipes the current card left from a button.
func (c *Controller) Dislike() Outcome {
	return c.button(domain.SwipeLeft)
}

func (c *Controller) button(dir domain.SwipeDirection) Outcome {
	if c.tracker.IsDragging() || c.tracker.IsAnimating() || c.pending != nil || len(c.quotes) == 0 {
		return OutcomeIgnored
	}

	c.tracker.Animate(domain.Offset{X: c.exitOffset(dir)}, domain.PhaseCommitting)
	c.pending = c.sched.AfterFunc(c.cfg.ButtonDelay, func() {
		c.pending = nil
		c.HandleSwipe(dir)
	})

	return OutcomeScheduled
}

func (c *Controller) exitOffset(dir domain.SwipeDirection) float64 {
	if dir == domain.SwipeRight {
		return c.cfg.ButtonOffset
	}

	return -c.cfg.ButtonOffset
}

// HandleSwipe commits a swipe on the current card. Gated swipes reset the
// gesture, raise a modal and record nothing.
func (c *Controller) HandleSwipe(dir domain.SwipeDirection) Outcome {
	if !dir.Valid() || len(c.quotes) == 0 {
		c.tracker.Reset()
		return OutcomeIgnored
	}

	auth := c.Authenticated()

	if outcome, gated := c.gate(auth); gated {
		c.tracker.Reset()
		c.metrics.Swipe(string(dir), auth, string(outcome))

		return outcome
	}

	q := c.quotes[c.index]
	c.tracker.Push(domain.SwipeHistoryEntry{Index: c.index, Direction: dir})

	if dir == domain.SwipeRight {
		c.like(c.index, auth)
	} else {
		c.dislike(c.index, auth)
	}

	if c.tracker.Phase() != domain.PhaseCommitting {
		c.tracker.Animate(domain.Offset{X: c.exitOffset(dir)}, domain.PhaseCommitting)
	}

	c.stopPending()
	c.pending = c.sched.AfterFunc(c.cfg.CommitDelay, c.advance)

	c.metrics.Swipe(string(dir), auth, string(OutcomeCommitted))
	c.logger.Debug("swipe committed",
		slog.String("direction", string(dir)),
		slog.String("quote_id", q.ID.String()),
		slog.Int("index", c.index),
	)

	return OutcomeCommitted
}

// gate counts the swipe and reports whether a modal interrupts it.
func (c *Controller) gate(auth bool) (Outcome, bool) {
	if !auth {
		c.guestSwipes = min(c.guestSwipes+1, c.cfg.GuestLimit)
		if c.guestSwipes >= c.cfg.GuestLimit {
			c.modal = domain.ModalAuth
			return OutcomeGatedAuth, true
		}

		return "", false
	}

	c.swipes++
	if c.swipes < c.cfg.PromoInterval {
		return "", false
	}

	c.swipes = 0

	if c.promo != nil && c.promo.CanShow() {
		c.promo.MarkShown()
		c.modal = domain.ModalPromo

		return OutcomeGatedPromo, true
	}

	return "", false
}

func (c *Controller) like(i int, auth bool) {
	q := c.quotes[i]

	if c.liked.Has(q.ID) {
		c.lastLiked = &q
		c.lastLikeAdded = false

		return
	}

	c.remember(q)

	q.IsLiked = true
	q.IsDisliked = false
	q.LikesCount++
	c.quotes[i] = q

	c.liked.Add(q)
	c.disliked.Remove(q.ID)
	c.lastLiked = &q
	c.lastLikeAdded = true

	c.enqueue(syncqueue.KindLike, q.ID, auth)
}

func (c *Controller) dislike(i int, auth bool) {
	q := c.quotes[i]

	if c.disliked.Has(q.ID) {
		return
	}

	c.remember(q)

	q.IsDisliked = true
	q.IsLiked = false
	q.DislikesCount++
	c.quotes[i] = q

	c.disliked.Add(q)
	c.liked.Remove(q.ID)

	c.enqueue(syncqueue.KindDislike, q.ID, auth)
}

func (c *Controller) enqueue(kind string, id domain.QuoteID, auth bool) {
	if !auth || c.sync == nil {
		return
	}

	c.sync.Enqueue(syncqueue.Job{Kind: kind, QuoteID: id, Viewer: c.viewer})
}

// advance moves to the next card, wrapping at the end of the deck. Guests
// lose their collections on wrap.
func (c *Controller) advance() {
	c.pending = nil

	next := c.index + 1
	if next >= len(c.quotes) {
		next = 0

		if !c.Authenticated() {
			c.forget(true)
		}
	}

	c.index = next
	c.tracker.Reset()
	c.notify()
}

// Undo reverts the most recent swipe. It reports false when there is nothing
// to undo or a gesture is running.
func (c *Controller) Undo() bool {
	if c.tracker.IsDragging() || c.tracker.IsAnimating() || c.pending != nil {
		return false
	}

	entry, ok := c.tracker.Pop()
	if !ok {
		return false
	}

	// Only a right swipe reverses its collection change.
	if entry.Direction == domain.SwipeRight && c.lastLiked != nil &&
		entry.Index < len(c.quotes) && c.quotes[entry.Index].ID == c.lastLiked.ID {
		c.liked.Remove(c.lastLiked.ID)

		q := &c.quotes[entry.Index]
		q.IsLiked = false

		if c.lastLikeAdded {
			q.LikesCount = max(q.LikesCount-1, 0)
		}

		c.lastLiked = nil
	}

	if c.Authenticated() {
		c.swipes = max(c.swipes-1, 0)
	} else {
		c.guestSwipes = max(c.guestSwipes-1, 0)
	}

	offset := c.cfg.UndoOffset
	if entry.Direction == domain.SwipeRight {
		offset = -offset
	}

	c.tracker.Animate(domain.Offset{X: offset}, domain.PhaseUndoing)
	c.pending = c.sched.AfterFunc(c.cfg.UndoDelay, func() {
		c.pending = nil
		c.index = min(entry.Index, max(len(c.quotes)-1, 0))
		c.tracker.Reset()
		c.notify()
	})

	c.metrics.Undo()

	return true
}

// Modal returns the overlay the client must show.
func (c *Controller) Modal() domain.Modal {
	return c.modal
}

// DismissModal closes the overlay. The guest gate stays armed.
func (c *Controller) DismissModal() {
	c.modal = domain.ModalNone
}

// Liked returns the liked quotes in the order they were liked.
func (c *Controller) Liked() []domain.Quote {
	return c.liked.List()
}

// Disliked returns the disliked quotes.
func (c *Controller) Disliked() []domain.Quote {
	return c.disliked.List()
}

// Saved returns the saved quotes.
func (c *Controller) Saved() []domain.Quote {
	return c.saved.List()
}

func (c *Controller) remember(q domain.Quote) {
	if _, ok := c.counts[q.ID]; !ok {
		c.counts[q.ID] = voteCounts{likes: q.LikesCount, dislikes: q.DislikesCount}
	}
}

// forget drops the collections and the card flags mirroring them. A guest's
// swipes were never recorded upstream, so with restoreCounts the optimistic
// count bumps are reverted too.
func (c *Controller) forget(restoreCounts bool) {
	c.clearCollections()

	for i := range c.quotes {
		q := &c.quotes[i]

		if n, ok := c.counts[q.ID]; ok && restoreCounts {
			q.LikesCount, q.DislikesCount = n.likes, n.dislikes
		}

		q.IsLiked, q.IsDisliked, q.IsSaved = false, false, false
	}

	clear(c.counts)
}

func (c *Controller) clearCollections() {
	c.liked.Clear()
	c.disliked.Clear()
	c.saved.Clear()
	c.lastLiked = nil
}

func (c *Controller) stopPending() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

func (c *Controller) notify() {
	if c.onIndex != nil {
		c.onIndex(c.index, c.Current())
	}
}

// State is a renderable snapshot of the deck.
type State struct {
	Quote       *domain.Quote
	Index       int
	Total       int
	Gesture     domain.GestureState
	Modal       domain.Modal
	GuestSwipes int
	GuestLimit  int
	Swipes      int
	CanUndo     bool
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	return State{
		Quote:       c.Current(),
		Index:       c.index,
		Total:       len(c.quotes),
		Gesture:     c.tracker.Snapshot(),
		Modal:       c.modal,
		GuestSwipes: c.guestSwipes,
		GuestLimit:  c.cfg.GuestLimit,
		Swipes:      c.swipes,
		CanUndo:     len(c.tracker.History()) > 0,
	}
}
