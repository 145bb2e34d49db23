package dto

import (
	"github.com/jsamuelsen/quoteswipe/internal/app/content"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
)

// PreferencesRequest updates card personalization. Omitted fields keep
// their current value.
type PreferencesRequest struct {
	Theme      string `json:"theme" validate:"omitempty,max=32"`
	Font       string `json:"font" validate:"omitempty,max=32"`
	Background string `json:"background" validate:"omitempty,max=64"`
}

// Domain converts the request.
func (r PreferencesRequest) Domain() domain.Preferences {
	return domain.Preferences{Theme: r.Theme, Font: r.Font, Background: r.Background}
}

// TranslateRequest asks for a quote translation. Field checks happen in the
// content service.
type TranslateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
	SourceLanguage string `json:"sourceLanguage"`
}

// Input converts the request.
func (r TranslateRequest) Input() content.TranslateInput {
	return content.TranslateInput{Text: r.Text, Target: r.TargetLanguage, Source: r.SourceLanguage}
}

// TaxonomyQuery selects the onboarding subset of the taxonomy.
type TaxonomyQuery struct {
	Onboarding bool `form:"onboarding"`
}

// CategoriesResponse lists categories.
type CategoriesResponse struct {
	Categories []domain.Category `json:"categories"`
}

// CategoryGroupsResponse lists category groups.
type CategoryGroupsResponse struct {
	Groups []domain.CategoryGroup `json:"groups"`
}

// RecentSearchesResponse lists the recent search terms, newest first.
type RecentSearchesResponse struct {
	Recent []string `json:"recent"`
}
