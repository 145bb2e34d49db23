package acl

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/jsamuelsen/quoteswipe/internal/adapters/clients"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
)

// QuoteAPI serves quotes, the category taxonomy and swipe recording.
// It implements ports.QuoteSource and ports.SwipeRecorder.
type QuoteAPI struct {
	BaseAdapter
}

// NewQuoteAPI creates the adapter.
func NewQuoteAPI(client *clients.Client, serviceName string) *QuoteAPI {
	return &QuoteAPI{BaseAdapter: NewBaseAdapter(client, serviceName)}
}

type externalQuote struct {
	ID            domain.QuoteID `json:"id"`
	Text          string         `json:"text"`
	Author        string         `json:"author"`
	Category      string         `json:"category"`
	CategoryIcon  string         `json:"category_icon"`
	LikesCount    int            `json:"likes_count"`
	DislikesCount int            `json:"dislikes_count"`
	IsLiked       bool           `json:"is_liked"`
	IsDisliked    bool           `json:"is_disliked"`
	IsSaved       bool           `json:"is_saved"`
}

type externalCategory struct {
	ID    domain.QuoteID `json:"id"`
	Name  string         `json:"name"`
	Icon  string         `json:"icon"`
	Group string         `json:"group"`
}

type externalCategoryGroup struct {
	ID         domain.QuoteID     `json:"id"`
	Name       string             `json:"name"`
	Categories []externalCategory `json:"categories"`
}

type swipeRequest struct {
	QuoteID domain.QuoteID `json:"quoteId"`
}

// ListQuotes implements ports.QuoteSource.
func (a *QuoteAPI) ListQuotes(ctx context.Context, categories string) (domain.QuoteList, error) {
	path := "/api/quotes"
	if categories != "" {
		path += "?" + url.Values{"categories": {categories}}.Encode()
	}

	body := listBody[externalQuote]{key: "quotes"}
	if err := a.getJSON(ctx, path, "list quotes", "", &body); err != nil {
		return nil, err
	}

	return domain.QuoteList(FilterSlice(ctx, body.Items, translateQuote)), nil
}

// Categories implements ports.QuoteSource.
func (a *QuoteAPI) Categories(ctx context.Context, onboarding bool) ([]domain.Category, error) {
	body := listBody[externalCategory]{key: "categories"}
	if err := a.getJSON(ctx, withOnboarding("/api/categories", onboarding), "list categories", "", &body); err != nil {
		return nil, err
	}

	return TranslateSlice(body.Items, translateCategory)
}

// CategoryGroups implements ports.QuoteSource.
func (a *QuoteAPI) CategoryGroups(ctx context.Context, onboarding bool) ([]domain.CategoryGroup, error) {
	body := listBody[externalCategoryGroup]{key: "groups"}
	if err := a.getJSON(ctx, withOnboarding("/api/category-groups", onboarding), "list category groups", "", &body); err != nil {
		return nil, err
	}

	return TranslateSlice(body.Items, func(ext *externalCategoryGroup) (domain.CategoryGroup, error) {
		cats, err := TranslateSlice(ext.Categories, translateCategory)
		if err != nil {
			return domain.CategoryGroup{}, err
		}

		for i := range cats {
			if cats[i].Group == "" {
				cats[i].Group = ext.Name
			}
		}

		return domain.CategoryGroup{ID: ext.ID.String(), Name: ext.Name, Categories: cats}, nil
	})
}

// RecordLike implements ports.SwipeRecorder.
func (a *QuoteAPI) RecordLike(ctx context.Context, id domain.QuoteID) error {
	return a.sendJSON(ctx, http.MethodPost, "/api/user/likes", "record like", swipeRequest{QuoteID: id}, nil)
}

// RecordDislike implements ports.SwipeRecorder.
func (a *QuoteAPI) RecordDislike(ctx context.Context, id domain.QuoteID) error {
	return a.sendJSON(ctx, http.MethodPost, "/api/user/dislikes", "record dislike", swipeRequest{QuoteID: id}, nil)
}

func withOnboarding(path string, onboarding bool) string {
	if onboarding {
		return path + "?onboarding=true"
	}

	return path
}

func translateQuote(ext *externalQuote) (domain.Quote, error) {
	if err := ValidateRequired(ext.ID.String(), "id"); err != nil {
		return domain.Quote{}, err
	}

	text := strings.TrimSpace(ext.Text)
	if err := ValidateRequired(text, "text"); err != nil {
		return domain.Quote{}, err
	}

	return domain.Quote{
		ID:            ext.ID,
		Text:          text,
		Author:        strings.TrimSpace(ext.Author),
		Category:      ext.Category,
		CategoryIcon:  ext.CategoryIcon,
		LikesCount:    max(ext.LikesCount, 0),
		DislikesCount: max(ext.DislikesCount, 0),
		IsLiked:       ext.IsLiked,
		IsDisliked:    ext.IsDisliked && !ext.IsLiked,
		IsSaved:       ext.IsSaved,
	}, nil
}

func translateCategory(ext *externalCategory) (domain.Category, error) {
	if err := ValidateRequired(ext.Name, "name"); err != nil {
		return domain.Category{}, err
	}

	return domain.Category{
		ID:    ext.ID.String(),
		Name:  ext.Name,
		Icon:  ext.Icon,
		Group: ext.Group,
	}, nil
}
