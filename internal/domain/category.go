package domain

import (
	"slices"
	"strings"
)

// AllCategoriesKey is the cache discriminator for an unfiltered feed.
const AllCategoriesKey = "all"

// Category is a quote category from the taxonomy.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Group string `json:"group,omitempty"`
}

// CategoryGroup groups categories for onboarding and filtering.
type CategoryGroup struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Categories []Category `json:"categories"`
}

// CategorySelection is the set of category names chosen by the viewer.
// Empty means "all" for authenticated viewers and "first category" for guests.
type CategorySelection []string

// Normalized returns the selection trimmed, de-duplicated and sorted.
func (s CategorySelection) Normalized() CategorySelection {
	out := make(CategorySelection, 0, len(s))
	for _, name := range s {
		name = strings.TrimSpace(name)
		if name == "" || slices.Contains(out, name) {
			continue
		}

		out = append(out, name)
	}

	slices.Sort(out)

	return out
}

// IsMulti reports whether more than one category is selected.
func (s CategorySelection) IsMulti() bool {
	return len(s.Normalized()) > 1
}

// CacheKey resolves the quote-list cache key for this selection.
// firstCategory is used for guests with an empty selection; when it is empty
// as well the key falls back to "all".
func (s CategorySelection) CacheKey(authenticated bool, firstCategory string) string {
	names := s.Normalized()
	if len(names) > 0 {
		return strings.Join(names, ",")
	}

	if !authenticated && firstCategory != "" {
		return firstCategory
	}

	return AllCategoriesKey
}

// QueryValue returns the `categories` query parameter for the upstream, or
// empty for an unfiltered request.
func (s CategorySelection) QueryValue(authenticated bool, firstCategory string) string {
	key := s.CacheKey(authenticated, firstCategory)
	if key == AllCategoriesKey {
		return ""
	}

	return key
}
