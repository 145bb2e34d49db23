package domain

import "time"

// User is the authenticated viewer as reported by the upstream.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Credentials is the session token issued by the upstream on login.
type Credentials struct {
	Token string

	// ExpiresAt is zero when the token carries no expiry.
	ExpiresAt time.Time
}

// Expired reports whether the token expiry has passed at now.
func (c Credentials) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// AuthResult is what a successful login or registration yields.
type AuthResult struct {
	User        User
	Credentials Credentials
}

// Preferences hold the card personalization choices.
type Preferences struct {
	Theme      string `json:"theme"`
	Font       string `json:"font"`
	Background string `json:"background"`
}

// Default personalization values for viewers who never picked any.
const (
	DefaultTheme      = "classic"
	DefaultFont       = "serif"
	DefaultBackground = "none"
)

// DefaultPreferences returns the preferences used when nothing is stored.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:      DefaultTheme,
		Font:       DefaultFont,
		Background: DefaultBackground,
	}
}

// Merge fills empty fields of p from fallback.
func (p Preferences) Merge(fallback Preferences) Preferences {
	if p.Theme == "" {
		p.Theme = fallback.Theme
	}

	if p.Font == "" {
		p.Font = fallback.Font
	}

	if p.Background == "" {
		p.Background = fallback.Background
	}

	return p
}

// Plan names.
const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// Subscription describes the viewer's plan and the features it unlocks.
type Subscription struct {
	Plan     string          `json:"plan"`
	Active   bool            `json:"active"`
	Features map[string]bool `json:"features"`
}

// FreeSubscription is the plan assumed for guests.
func FreeSubscription() Subscription {
	return Subscription{Plan: PlanFree, Active: false, Features: map[string]bool{}}
}

// HasFeature reports whether the subscription unlocks the named feature.
func (s Subscription) HasFeature(name string) bool {
	return s.Features[name]
}

// Stats are marketing counters shown on the landing widgets.
type Stats struct {
	TotalQuotes int `json:"total_quotes"`
	TotalUsers  int `json:"total_users"`
	TotalLikes  int `json:"total_likes"`
}

// Review is a testimonial.
type Review struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Translation is the result of translating a quote text.
type Translation struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
	SourceLanguage string `json:"sourceLanguage,omitempty"`

	// Translated is false when the original text is returned as a fallback.
	Translated bool `json:"translated"`
}

// VisitorInfo is the telemetry beacon payload sent once per session.
type VisitorInfo struct {
	SessionID string `json:"session_id"`
	UserAgent string `json:"user_agent"`
	Language  string `json:"language,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	Device    string `json:"device"`
}

// Modal is the overlay the client must show after an action.
type Modal string

const (
	ModalNone  Modal = ""
	ModalAuth  Modal = "auth"
	ModalPromo Modal = "promo"
)
