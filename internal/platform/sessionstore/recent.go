package sessionstore

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jsamuelsen/quoteswipe/internal/platform/cache"
)

// Unprefixed keys.
const (
	KeyRecentSearches = "recentSearches"
	KeyVisitorTracked = "visitor_tracked"
	KeyPromoShown     = "instagram_promo_shown"
)

// MaxRecentSearches bounds the recent search list.
const MaxRecentSearches = 5

// RecentSearches is the viewer's most recent search terms, newest first.
type RecentSearches struct {
	s Storage
}

// NewRecentSearches binds the recent search list to s.
func NewRecentSearches(s Storage) RecentSearches {
	return RecentSearches{s: s}
}

// List returns the stored terms. A corrupt value reads as empty.
func (r RecentSearches) List() []string {
	raw, ok := r.s.GetItem(KeyRecentSearches)
	if !ok {
		return []string{}
	}

	var terms []string
	if err := json.Unmarshal([]byte(raw), &terms); err != nil {
		return []string{}
	}

	if len(terms) > MaxRecentSearches {
		terms = terms[:MaxRecentSearches]
	}

	return terms
}

// Add records term as the most recent search. An earlier entry equal to it
// ignoring case is replaced. Blank terms are ignored.
func (r RecentSearches) Add(term string) []string {
	term = strings.TrimSpace(term)
	if term == "" {
		return r.List()
	}

	terms := []string{term}

	for _, t := range r.List() {
		if !strings.EqualFold(t, term) {
			terms = append(terms, t)
		}
	}

	if len(terms) > MaxRecentSearches {
		terms = terms[:MaxRecentSearches]
	}

	raw, _ := json.Marshal(terms)
	_ = r.s.SetItem(KeyRecentSearches, string(raw))

	return terms
}

// Clear drops the list.
func (r RecentSearches) Clear() {
	r.s.RemoveItem(KeyRecentSearches)
}

// VisitorTracked reports whether the visitor beacon was already sent.
func VisitorTracked(s Storage) bool {
	v, ok := s.GetItem(KeyVisitorTracked)
	return ok && v == "true"
}

// MarkVisitorTracked records that the beacon was sent.
func MarkVisitorTracked(s Storage) error {
	return s.SetItem(KeyVisitorTracked, "true")
}

// PromoGate decides whether the Instagram promo may be shown. The promo is
// shown at most once per cooldown window.
type PromoGate struct {
	s        Storage
	clock    cache.Clock
	cooldown time.Duration
}

// NewPromoGate creates a gate over s.
func NewPromoGate(s Storage, clock cache.Clock, cooldown time.Duration) *PromoGate {
	return &PromoGate{s: s, clock: clock, cooldown: cooldown}
}

// CanShow reports whether the cooldown since the last showing has elapsed.
func (g *PromoGate) CanShow() bool {
	raw, ok := g.s.GetItem(KeyPromoShown)
	if !ok {
		return true
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return true
	}

	return g.clock.Now().Sub(time.UnixMilli(ms)) >= g.cooldown
}

// MarkShown stamps the current time as the last showing.
func (g *PromoGate) MarkShown() {
	_ = g.s.SetItem(KeyPromoShown, strconv.FormatInt(g.clock.Now().UnixMilli(), 10))
}
