// Package content serves the reads and writes around the feed: card
// preferences, the subscription plan, the category taxonomy, marketing
// widgets, translation and search.
package content

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jsamuelsen/quoteswipe/internal/app"
	"github.com/jsamuelsen/quoteswipe/internal/app/session"
	"github.com/jsamuelsen/quoteswipe/internal/app/staged"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
	"github.com/jsamuelsen/quoteswipe/internal/platform/cache"
	"github.com/jsamuelsen/quoteswipe/internal/platform/logging"
	"github.com/jsamuelsen/quoteswipe/internal/platform/sessionstore"
	"github.com/jsamuelsen/quoteswipe/internal/ports"
)

// Request cache keys shared by every session.
const (
	KeyCategories           = "categories"
	KeyCategoriesOnboarding = "categories:onboarding"
	KeyGroups               = "category-groups"
	KeyGroupsOnboarding     = "category-groups:onboarding"
	KeyStats                = "stats"
	KeyReviews              = "reviews"
	KeySearch               = "search:quotes"
)

const defaultPreferencesTTL = time.Hour

func preferencesKey(userID string) string  { return "preferences:user:" + userID }
func subscriptionKey(userID string) string { return "subscription:user:" + userID }

// Session is the part of a viewer session this package needs.
type Session interface {
	Context(ctx context.Context) context.Context
	Viewer() ports.Viewer
	Authenticated() bool
	Store() sessionstore.Storage
	Clock() cache.Clock
	RecentSearches() sessionstore.RecentSearches
	BeginTranslation(ctx context.Context) (context.Context, func())
}

// Config holds TTLs and paging limits.
type Config struct {
	CategoriesTTL   time.Duration
	MarketingTTL    time.Duration
	PreferencesTTL  time.Duration
	SubscriptionTTL time.Duration
	SearchTTL       time.Duration
	SearchPageSize  int
	MaxPageSize     int
}

// Options configure a Service. Quotes, Users, Content and Cache are required.
type Options struct {
	Config  Config
	Quotes  ports.QuoteSource
	Users   ports.UserDataStore
	Content ports.ContentSource
	Cache   *cache.Cache
}

// Service implements the supplementary reads and writes.
type Service struct {
	cfg     Config
	quotes  ports.QuoteSource
	users   ports.UserDataStore
	content ports.ContentSource
	cache   *cache.Cache
}

// New creates the service.
func New(opts Options) *Service {
	if opts.Quotes == nil || opts.Users == nil || opts.Content == nil || opts.Cache == nil {
		panic("content: quotes, users, content and cache are required")
	}

	cfg := opts.Config
	if cfg.SearchPageSize <= 0 {
		cfg.SearchPageSize = 20
	}

	if cfg.PreferencesTTL <= 0 {
		cfg.PreferencesTTL = defaultPreferencesTTL
	}

	if cfg.MaxPageSize < cfg.SearchPageSize {
		cfg.MaxPageSize = max(100, cfg.SearchPageSize)
	}

	return &Service{
		cfg:     cfg,
		quotes:  opts.Quotes,
		users:   opts.Users,
		content: opts.Content,
		cache:   opts.Cache,
	}
}

// Categories returns the taxonomy, or the onboarding subset.
func (s *Service) Categories(ctx context.Context, onboarding bool) ([]domain.Category, error) {
	key := KeyCategories
	if onboarding {
		key = KeyCategoriesOnboarding
	}

	return cache.GetOrFetch(ctx, s.cache, key, func(ctx context.Context) ([]domain.Category, error) {
		return s.quotes.Categories(ctx, onboarding)
	}, s.cfg.CategoriesTTL)
}

// CategoryGroups returns the grouped taxonomy, or the onboarding subset.
func (s *Service) CategoryGroups(ctx context.Context, onboarding bool) ([]domain.CategoryGroup, error) {
	key := KeyGroups
	if onboarding {
		key = KeyGroupsOnboarding
	}

	return cache.GetOrFetch(ctx, s.cache, key, func(ctx context.Context) ([]domain.CategoryGroup, error) {
		return s.quotes.CategoryGroups(ctx, onboarding)
	}, s.cfg.CategoriesTTL)
}

// FirstCategory names the category shown to a guest who picked none. It is
// empty when the taxonomy cannot be loaded.
func (s *Service) FirstCategory(ctx context.Context) string {
	cats, err := s.Categories(ctx, false)
	if err != nil {
		logging.FromContext(ctx).DebugContext(ctx, "first category unavailable", slog.Any("error", err))
		return ""
	}

	for _, c := range cats {
		if c.Name != "" {
			return c.Name
		}
	}

	return ""
}

// Marketing is the landing widget content.
type Marketing struct {
	Stats   *domain.Stats   `json:"stats"`
	Reviews []domain.Review `json:"reviews"`
}

// Marketing loads stats and reviews concurrently through the request cache.
func (s *Service) Marketing(ctx context.Context) (Marketing, error) {
	stats, reviews, err := app.Parallel2(ctx,
		func(ctx context.Context) (*domain.Stats, error) {
			return cache.GetOrFetch(ctx, s.cache, KeyStats, s.content.Stats, s.cfg.MarketingTTL)
		},
		func(ctx context.Context) ([]domain.Review, error) {
			return cache.GetOrFetch(ctx, s.cache, KeyReviews, s.content.Reviews, s.cfg.MarketingTTL)
		},
	)
	if err != nil {
		return Marketing{}, err
	}

	return Marketing{Stats: stats, Reviews: reviews}, nil
}

// Warm preloads the shared cache entries. Failures are logged.
func (s *Service) Warm(ctx context.Context) {
	failed := app.BestEffort(ctx,
		app.Task{Name: KeyCategories, Run: func(ctx context.Context) error {
			_, err := s.Categories(ctx, false)
			return err
		}},
		app.Task{Name: KeyGroups, Run: func(ctx context.Context) error {
			_, err := s.CategoryGroups(ctx, false)
			return err
		}},
		app.Task{Name: "marketing", Run: func(ctx context.Context) error {
			_, err := s.Marketing(ctx)
			return err
		}},
	)

	for name, err := range failed {
		logging.FromContext(ctx).WarnContext(ctx, "cache warm-up failed",
			slog.String("entry", name),
			slog.Any("error", err),
		)
	}
}

// Subscription returns the viewer's plan. Guests, and viewers whose plan
// cannot be loaded, get the free plan.
func (s *Service) Subscription(ctx context.Context, sess Session) domain.Subscription {
	if !sess.Authenticated() {
		return domain.FreeSubscription()
	}

	v := sess.Viewer()

	sub, err := cache.GetOrFetch(sess.Context(ctx), s.cache, subscriptionKey(v.UserID), s.users.Subscription, s.cfg.SubscriptionTTL)
	if err != nil || sub == nil {
		logging.FromContext(ctx).WarnContext(ctx, "subscription unavailable, assuming free plan", slog.Any("error", err))
		return domain.FreeSubscription()
	}

	return *sub
}

// Preferences returns the card personalization. Signed-in viewers read the
// upstream copy and refresh the local mirror; guests, and signed-in viewers
// when the upstream fails, read the mirror.
func (s *Service) Preferences(ctx context.Context, sess Session) domain.Preferences {
	local := s.localPreferences(sess)

	if !sess.Authenticated() {
		return local.Merge(domain.DefaultPreferences())
	}

	v := sess.Viewer()

	remote, err := cache.GetOrFetch(sess.Context(ctx), s.cache, preferencesKey(v.UserID), s.users.Preferences, s.cfg.PreferencesTTL)
	if err != nil || remote == nil {
		logging.FromContext(ctx).WarnContext(ctx, "preferences unavailable, using local copy", slog.Any("error", err))
		return local.Merge(domain.DefaultPreferences())
	}

	prefs := remote.Merge(local).Merge(domain.DefaultPreferences())
	mirrorPreferences(sess, prefs)

	return prefs
}

// SavePreferences merges update into the current preferences and stores the
// result locally and, for signed-in viewers, upstream. When the upstream save
// fails the local mirror is restored.
func (s *Service) SavePreferences(ctx context.Context, sess Session, update domain.Preferences) (domain.Preferences, error) {
	previous := s.localPreferences(sess)
	next := update.Merge(s.Preferences(ctx, sess))

	var plan staged.Plan

	_ = plan.Add(staged.Func("mirror preferences",
		func(context.Context) error {
			mirrorPreferences(sess, next)
			return nil
		},
		func(context.Context) error {
			mirrorPreferences(sess, previous)
			return nil
		},
	))

	if sess.Authenticated() {
		key := preferencesKey(sess.Viewer().UserID)

		_ = plan.Add(staged.Func("save preferences upstream",
			func(ctx context.Context) error {
				if err := s.users.SavePreferences(sess.Context(ctx), next); err != nil {
					return err
				}

				s.cache.Invalidate(key)

				return nil
			},
			nil,
		))
	}

	if err := plan.Commit(ctx); err != nil {
		return previous.Merge(domain.DefaultPreferences()), err
	}

	return next, nil
}

// localPreferences reads the mirrored card settings. Each one is a
// timestamped mirror entry, so a setting older than PreferencesTTL reads as
// unset.
func (s *Service) localPreferences(sess Session) domain.Preferences {
	read := func(key string) string {
		v, _ := sessionstore.Lookup[string](sess.Store(), sess.Clock(), key, s.cfg.PreferencesTTL)
		return v
	}

	return domain.Preferences{
		Theme:      read(sessionstore.KeyCardTheme),
		Font:       read(sessionstore.KeyCardFont),
		Background: read(sessionstore.KeyCardBackground),
	}
}

// mirrorPreferences stores p in the session mirror. Empty settings are
// removed so they fall back to the defaults.
func mirrorPreferences(sess Session, p domain.Preferences) {
	store, clock := sess.Store(), sess.Clock()

	for key, value := range map[string]string{
		sessionstore.KeyCardTheme:      p.Theme,
		sessionstore.KeyCardFont:       p.Font,
		sessionstore.KeyCardBackground: p.Background,
	} {
		if value == "" {
			sessionstore.RemoveFromCache(store, key)
			continue
		}

		_ = sessionstore.SetToCache(store, clock, key, value)
	}
}

// TranslateInput is a translation request.
type TranslateInput struct {
	Text   string
	Target string
	Source string
}

// Translate translates a quote text. A newer translation from the same
// session supersedes this one, which then fails with a conflict. Any other
// failure returns the original text untranslated.
func (s *Service) Translate(ctx context.Context, sess Session, in TranslateInput) (*domain.Translation, error) {
	fields := domain.FieldErrors{}

	if strings.TrimSpace(in.Text) == "" {
		fields["text"] = "Text is required"
	}

	if strings.TrimSpace(in.Target) == "" {
		fields["targetLanguage"] = "Target language is required"
	}

	if err := fields.OrNil(); err != nil {
		return nil, err
	}

	tctx, done := sess.BeginTranslation(ctx)
	defer done()

	res, err := s.content.Translate(tctx, in.Text, in.Target, in.Source)
	if err == nil && res != nil {
		res.Translated = true
		return res, nil
	}

	if errors.Is(context.Cause(tctx), session.ErrSuperseded) {
		return nil, domain.NewConflictError("translation", "superseded by a newer request")
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	logging.FromContext(ctx).DebugContext(ctx, "translation failed, returning original", slog.Any("error", err))

	return &domain.Translation{
		Text:           in.Text,
		TargetLanguage: in.Target,
		SourceLanguage: in.Source,
	}, nil
}
