// Package feed loads the viewer's quote deck with stale-while-revalidate
// semantics.
//
// A list mirrored in the session store is shown immediately and refreshed
// in the background. The refreshed list only replaces the deck when its
// length changed, no gesture is running and the first card is showing, so a
// refresh never pulls a card out from under a swipe. A cold load fetches
// synchronously through the request cache.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jsamuelsen/quoteswipe/internal/app"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
	"github.com/jsamuelsen/quoteswipe/internal/platform/cache"
	"github.com/jsamuelsen/quoteswipe/internal/platform/logging"
	"github.com/jsamuelsen/quoteswipe/internal/platform/sessionstore"
	"github.com/jsamuelsen/quoteswipe/internal/platform/telemetry"
	"github.com/jsamuelsen/quoteswipe/internal/ports"
)

// Deck is the displayed quote list the feed fills.
type Deck interface {
	Quotes() domain.QuoteList
	Index() int
	Idle() bool
	Replace(quotes domain.QuoteList, index int)
}

// Reason says why a load was requested. It decides where the deck is
// positioned afterwards.
type Reason int

const (
	// ReasonInitial restores the persisted position.
	ReasonInitial Reason = iota

	// ReasonCategoryChange starts at the first card after the settle delay.
	ReasonCategoryChange

	// ReasonLogin keeps the current card if the new list still holds it.
	ReasonLogin

	// ReasonLogout starts at the first card.
	ReasonLogout

	// ReasonRefresh is a background revalidation.
	ReasonRefresh
)

// String returns the reason name used in logs.
func (r Reason) String() string {
	switch r {
	case ReasonInitial:
		return "initial"
	case ReasonCategoryChange:
		return "category_change"
	case ReasonLogin:
		return "login"
	case ReasonLogout:
		return "logout"
	case ReasonRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Where a displayed list came from.
const (
	SourceMirror   = "mirror"
	SourceUpstream = "upstream"
	SourceRefresh  = "refresh"
)

// Config holds the feed timings.
type Config struct {
	QuotesTTL   time.Duration
	SettleDelay time.Duration
}

// Options are the Feed dependencies. Source, Cache, Store, Deck and
// Scheduler are required.
type Options struct {
	Config Config

	Source    ports.QuoteSource
	Cache     *cache.Cache
	Store     sessionstore.Storage
	Deck      Deck
	Scheduler app.Scheduler

	// Clock stamps mirror entries. Defaults to the system clock.
	Clock cache.Clock

	// Spawn runs the background refresh. Defaults to a new goroutine.
	Spawn func(func())

	// Rand shuffles multi-category decks. Defaults to a randomly seeded PCG.
	Rand *rand.Rand

	// FirstCategory names the category a guest with no selection sees.
	FirstCategory func(ctx context.Context) string

	Metrics *telemetry.Collectors
}

// Result describes a load.
type Result struct {
	Key    string
	Source string

	// Ready is closed once the list was applied to the deck.
	Ready <-chan struct{}
}

// Feed fills one viewer's deck. It is not safe for concurrent use; the
// owning session serializes calls and its Scheduler callbacks.
type Feed struct {
	cfg     Config
	source  ports.QuoteSource
	cache   *cache.Cache
	store   sessionstore.Storage
	deck    Deck
	sched   app.Scheduler
	clock   cache.Clock
	spawn   func(func())
	rand    *rand.Rand
	first   func(ctx context.Context) string
	metrics *telemetry.Collectors

	selection  domain.CategorySelection
	key        string
	loggingIn  bool
	generation uint64
	loaded     bool
}

// New creates a Feed.
func New(opts Options) *Feed {
	if opts.Source == nil || opts.Cache == nil || opts.Store == nil || opts.Deck == nil || opts.Scheduler == nil {
		panic("feed: source, cache, store, deck and scheduler are required")
	}

	if opts.Clock == nil {
		opts.Clock = cache.SystemClock{}
	}

	if opts.Spawn == nil {
		opts.Spawn = func(fn func()) { go fn() }
	}

	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Feed{
		cfg:     opts.Config,
		source:  opts.Source,
		cache:   opts.Cache,
		store:   opts.Store,
		deck:    opts.Deck,
		sched:   opts.Scheduler,
		clock:   opts.Clock,
		spawn:   opts.Spawn,
		rand:    opts.Rand,
		first:   opts.FirstCategory,
		metrics: opts.Metrics,
	}
}

// Selection returns the active category selection.
func (f *Feed) Selection() domain.CategorySelection {
	return f.selection
}

// Key returns the cache key of the displayed list.
func (f *Feed) Key() string {
	return f.key
}

// Loaded reports whether a list was ever loaded.
func (f *Feed) Loaded() bool {
	return f.loaded
}

// SetLoggingIn marks a login transition. The next applied list keeps the
// current card when it still contains it.
func (f *Feed) SetLoggingIn(v bool) {
	f.loggingIn = v
}

// LoggingIn reports whether a login transition is pending.
func (f *Feed) LoggingIn() bool {
	return f.loggingIn
}

// Reload loads the active selection again.
func (f *Feed) Reload(ctx context.Context, reason Reason) (Result, error) {
	return f.Load(ctx, f.selection, reason)
}

// Load resolves the list for sel and applies it to the deck. The viewer in
// ctx decides the cache key and the upstream credentials.
//
// A mirrored list is applied before Load returns and revalidated in the
// background. A cold list is fetched before Load returns; on a category
// change it is applied after the settle delay, signalled through
// Result.Ready. On error the deck is left untouched.
func (f *Feed) Load(ctx context.Context, sel domain.CategorySelection, reason Reason) (Result, error) {
	viewer := ports.ViewerFromContext(ctx)
	auth := !viewer.Anonymous()

	sel = sel.Normalized()

	first := ""
	if !auth && len(sel) == 0 && f.first != nil {
		first = f.first(ctx)
	}

	key := sel.CacheKey(auth, first)
	query := sel.QueryValue(auth, first)

	f.selection = sel
	f.key = key
	f.generation++
	gen := f.generation

	prevID := f.currentID()
	ready := make(chan struct{})

	logger := logging.FromContext(ctx).With(
		slog.String("cache_key", key),
		slog.String("reason", reason.String()),
	)

	if list, ok := sessionstore.Lookup[domain.QuoteList](f.store, f.clock, sessionstore.QuotesKey(key), f.cfg.QuotesTTL); ok {
		f.loaded = true
		f.apply(list, reason, prevID)
		close(ready)

		f.metrics.FeedLoad(SourceMirror)
		logger.DebugContext(ctx, "feed served from mirror", slog.Int("quotes", len(list)))

		f.revalidate(ctx, gen, scope(viewer), key, query)

		return Result{Key: key, Source: SourceMirror, Ready: ready}, nil
	}

	list, err := f.fetch(ctx, scope(viewer), key, query)
	if err != nil {
		close(ready)
		return Result{}, fmt.Errorf("loading quotes for %q: %w", key, err)
	}

	f.loaded = true
	f.metrics.FeedLoad(SourceUpstream)
	f.mirror(ctx, key, list)

	logger.DebugContext(ctx, "feed fetched", slog.Int("quotes", len(list)))

	if reason == ReasonCategoryChange && f.cfg.SettleDelay > 0 {
		f.sched.AfterFunc(f.cfg.SettleDelay, func() {
			if gen == f.generation {
				f.apply(list, reason, prevID)
			}

			close(ready)
		})

		return Result{Key: key, Source: SourceUpstream, Ready: ready}, nil
	}

	f.apply(list, reason, prevID)
	close(ready)

	return Result{Key: key, Source: SourceUpstream, Ready: ready}, nil
}

// revalidate refreshes key in the background and applies the result under
// the scheduler when it is safe to do so.
func (f *Feed) revalidate(ctx context.Context, gen uint64, viewerScope, key, query string) {
	bg := context.WithoutCancel(ctx)

	f.spawn(func() {
		list, err := f.fetch(bg, viewerScope, key, query)
		if err != nil {
			logging.FromContext(bg).DebugContext(bg, "background refresh failed",
				slog.String("cache_key", key),
				slog.Any("error", err),
			)

			return
		}

		f.sched.AfterFunc(0, func() {
			f.mirror(bg, key, list)

			if gen != f.generation {
				return
			}

			if len(list) == len(f.deck.Quotes()) || !f.deck.Idle() || f.deck.Index() != 0 {
				return
			}

			f.metrics.FeedLoad(SourceRefresh)
			f.apply(list, ReasonRefresh, "")
		})
	})
}

func (f *Feed) fetch(ctx context.Context, viewerScope, key, query string) (domain.QuoteList, error) {
	return cache.GetOrFetch(ctx, f.cache, "quotes:"+viewerScope+":"+key,
		func(ctx context.Context) (domain.QuoteList, error) {
			return f.source.ListQuotes(ctx, query)
		},
		f.cfg.QuotesTTL,
	)
}

// scope keeps per-viewer flags such as is_liked out of other viewers'
// cached lists.
func scope(v *ports.Viewer) string {
	if v.Anonymous() {
		return "guest"
	}

	return "user:" + v.UserID
}

func (f *Feed) mirror(ctx context.Context, key string, list domain.QuoteList) {
	if err := sessionstore.SetToCache(f.store, f.clock, sessionstore.QuotesKey(key), list); err != nil {
		logging.FromContext(ctx).DebugContext(ctx, "mirroring quotes failed",
			slog.String("cache_key", key),
			slog.Any("error", err),
		)
	}
}

func (f *Feed) apply(list domain.QuoteList, reason Reason, prevID domain.QuoteID) {
	display := list.Clone()
	if f.selection.IsMulti() {
		f.shuffle(display)
	}

	index := 0

	switch {
	case (f.loggingIn || reason == ReasonLogin) && prevID != "":
		if i := display.IndexOf(prevID); i >= 0 {
			index = i
		}
	case reason == ReasonInitial:
		index = f.restoredIndex(display)
	}

	f.loggingIn = false
	f.deck.Replace(display, index)
}

// shuffle is a Fisher-Yates shuffle.
func (f *Feed) shuffle(list domain.QuoteList) {
	for i := len(list) - 1; i > 0; i-- {
		j := f.rand.IntN(i + 1)
		list[i], list[j] = list[j], list[i]
	}
}

func (f *Feed) currentID() domain.QuoteID {
	quotes, i := f.deck.Quotes(), f.deck.Index()
	if i < 0 || i >= len(quotes) {
		return ""
	}

	return quotes[i].ID
}

// restoredIndex finds the persisted card in list: by the id in the persisted
// path first, then by the persisted index.
func (f *Feed) restoredIndex(list domain.QuoteList) int {
	path := sessionstore.GetFromCache(f.store, f.clock, sessionstore.KeyCurrentPath, f.cfg.QuotesTTL, "")
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		if idx := list.IndexOf(domain.QuoteID(path[i+1:])); idx >= 0 {
			return idx
		}
	}

	idx := sessionstore.GetFromCache(f.store, f.clock, sessionstore.KeyCurrentIndex, f.cfg.QuotesTTL, 0)
	if idx < 0 || idx >= len(list) {
		return 0
	}

	return idx
}

// Persist records the displayed position in the session mirror.
func (f *Feed) Persist(ctx context.Context, index int, path string) {
	for key, value := range map[string]any{
		sessionstore.KeyCurrentIndex: index,
		sessionstore.KeyCurrentPath:  path,
	} {
		if err := sessionstore.SetToCache(f.store, f.clock, key, value); err != nil {
			logging.FromContext(ctx).DebugContext(ctx, "persisting position failed",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
	}
}
