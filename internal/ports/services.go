// Package ports defines the contracts between the feed application and the
// upstream quote API. Adapters in internal/adapters implement them.
//
// Every method takes the request context first. The viewer's upstream token
// travels in that context (see WithViewer), so ports never carry credentials
// as arguments. Implementations return domain types and domain errors.
package ports

import (
	"context"

	"github.com/jsamuelsen/quoteswipe/internal/domain"
)

// QuoteSource lists quotes and the category taxonomy.
type QuoteSource interface {
	// ListQuotes returns quotes in server order. categories is a
	// comma-separated filter; empty means every category.
	ListQuotes(ctx context.Context, categories string) (domain.QuoteList, error)

	Categories(ctx context.Context, onboarding bool) ([]domain.Category, error)

	CategoryGroups(ctx context.Context, onboarding bool) ([]domain.CategoryGroup, error)
}

// SwipeRecorder persists swipe outcomes for an authenticated viewer.
type SwipeRecorder interface {
	RecordLike(ctx context.Context, id domain.QuoteID) error
	RecordDislike(ctx context.Context, id domain.QuoteID) error
}

// AuthProvider drives the upstream session lifecycle.
type AuthProvider interface {
	Login(ctx context.Context, email, password string) (*domain.AuthResult, error)
	Register(ctx context.Context, name, email, password string) (*domain.AuthResult, error)
	Google(ctx context.Context, credential string) (*domain.AuthResult, error)

	// Me returns the viewer identified by the token in ctx.
	// Returns domain.ErrUnauthenticated when the token is missing or rejected.
	Me(ctx context.Context) (*domain.User, error)

	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, password string) error
}

// UserDataStore reads and writes per-viewer settings.
type UserDataStore interface {
	Preferences(ctx context.Context) (*domain.Preferences, error)
	SavePreferences(ctx context.Context, prefs domain.Preferences) error
	Subscription(ctx context.Context) (*domain.Subscription, error)
}

// ContentSource serves marketing content, translation and telemetry.
type ContentSource interface {
	Stats(ctx context.Context) (*domain.Stats, error)
	Reviews(ctx context.Context) ([]domain.Review, error)
	Translate(ctx context.Context, text, target, source string) (*domain.Translation, error)
	Track(ctx context.Context, info domain.VisitorInfo) error
}

// PromoGate decides whether the periodic promo may interrupt the feed.
type PromoGate interface {
	CanShow() bool
	MarkShown()
}
