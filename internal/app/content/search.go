package content

import (
	"context"
	"strings"

	"github.com/jsamuelsen/quoteswipe/internal/domain"
	"github.com/jsamuelsen/quoteswipe/internal/platform/cache"
	"github.com/jsamuelsen/quoteswipe/internal/ports"
)

// SearchQuery selects one page of search results.
type SearchQuery struct {
	Term   string
	Offset int
	Limit  int
}

// SearchPage is one page of matches.
type SearchPage struct {
	Quotes  []domain.Quote
	Total   int
	Offset  int
	Limit   int
	HasMore bool

	// Recent is the viewer's recent search list after this query.
	Recent []string
}

// Search matches term against the text, author and category of every quote,
// ignoring case. The full list is fetched without the viewer's token so one
// cached copy serves every session. The first page of a non-empty query is
// recorded in the viewer's recent searches.
func (s *Service) Search(ctx context.Context, sess Session, q SearchQuery) (SearchPage, error) {
	term := strings.TrimSpace(q.Term)
	limit := q.Limit

	switch {
	case limit <= 0:
		limit = s.cfg.SearchPageSize
	case limit > s.cfg.MaxPageSize:
		limit = s.cfg.MaxPageSize
	}

	offset := max(q.Offset, 0)
	recent := sess.RecentSearches()

	if term == "" {
		return SearchPage{Quotes: []domain.Quote{}, Offset: offset, Limit: limit, Recent: recent.List()}, nil
	}

	anon := ports.WithViewer(ctx, &ports.Viewer{SessionID: sess.Viewer().SessionID})

	all, err := cache.GetOrFetch(anon, s.cache, KeySearch, func(ctx context.Context) (domain.QuoteList, error) {
		return s.quotes.ListQuotes(ctx, "")
	}, s.cfg.SearchTTL)
	if err != nil {
		return SearchPage{}, err
	}

	matches := Match(all, term)

	page := SearchPage{
		Quotes: []domain.Quote{},
		Total:  len(matches),
		Offset: offset,
		Limit:  limit,
	}

	if offset < len(matches) {
		end := min(offset+limit, len(matches))
		page.Quotes = matches[offset:end]
		page.HasMore = end < len(matches)
	}

	if offset == 0 {
		page.Recent = recent.Add(term)
	} else {
		page.Recent = recent.List()
	}

	return page, nil
}

// Match returns the quotes whose text, author or category contains term,
// ignoring case, in list order.
func Match(quotes domain.QuoteList, term string) []domain.Quote {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]domain.Quote, 0)

	if needle == "" {
		return out
	}

	for _, q := range quotes {
		if strings.Contains(strings.ToLower(q.Text), needle) ||
			strings.Contains(strings.ToLower(q.Author), needle) ||
			strings.Contains(strings.ToLower(q.Category), needle) {
			out = append(out, q)
		}
	}

	return out
}
