package dto

import (
	"github.com/jsamuelsen/quoteswipe/internal/app/session"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
)

// PointerRequest carries a pointer position in pixels.
type PointerRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

// CategoriesRequest replaces the category selection. An empty list means
// every category.
type CategoriesRequest struct {
	Categories []string `json:"categories" validate:"max=50,dive,notblank,max=100"`
}

// FeedResponse is the renderable deck state.
type FeedResponse struct {
	Quote         *domain.Quote       `json:"quote"`
	Index         int                 `json:"index"`
	Total         int                 `json:"total"`
	Gesture       domain.GestureState `json:"gesture"`
	Modal         domain.Modal        `json:"modal,omitempty"`
	GuestSwipes   int                 `json:"guestSwipes"`
	GuestLimit    int                 `json:"guestLimit"`
	Swipes        int                 `json:"swipes"`
	CanUndo       bool                `json:"canUndo"`
	Path          string              `json:"path"`
	CacheKey      string              `json:"cacheKey"`
	Categories    []string            `json:"categories"`
	Authenticated bool                `json:"authenticated"`
	User          *UserResponse       `json:"user,omitempty"`
	LikedCount    int                 `json:"likedCount"`
}

// ActionResponse is the result of a deck action.
type ActionResponse struct {
	Outcome string       `json:"outcome"`
	State   FeedResponse `json:"state"`
}

// LikedResponse lists the liked quotes of the session.
type LikedResponse struct {
	Quotes []domain.Quote `json:"quotes"`
	Count  int            `json:"count"`
}

// FeedFromState converts a session snapshot.
func FeedFromState(st session.State) FeedResponse {
	cats := []string(st.Selection)
	if cats == nil {
		cats = []string{}
	}

	return FeedResponse{
		Quote:         st.Quote,
		Index:         st.Index,
		Total:         st.Total,
		Gesture:       st.Gesture,
		Modal:         st.Modal,
		GuestSwipes:   st.GuestSwipes,
		GuestLimit:    st.GuestLimit,
		Swipes:        st.Swipes,
		CanUndo:       st.CanUndo,
		Path:          st.Path,
		CacheKey:      st.CacheKey,
		Categories:    cats,
		Authenticated: st.Authenticated,
		User:          UserFromDomain(st.User),
		LikedCount:    st.Liked,
	}
}

// ActionFromDomain converts a deck action.
func ActionFromDomain(a session.Action) ActionResponse {
	return ActionResponse{Outcome: string(a.Outcome), State: FeedFromState(a.State)}
}

// LikedFromDomain wraps the liked list.
func LikedFromDomain(quotes []domain.Quote) LikedResponse {
	if quotes == nil {
		quotes = []domain.Quote{}
	}

	return LikedResponse{Quotes: quotes, Count: len(quotes)}
}
