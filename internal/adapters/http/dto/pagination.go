package dto

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/jsamuelsen/quoteswipe/internal/app/content"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
)

// SearchRequest is the query string of GET /search. Cursor, when present,
// overrides q and resumes the search it was issued for.
type SearchRequest struct {
	Term   string `form:"q" validate:"max=200"`
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit" validate:"gte=0,lte=100"`
}

// cursor is the opaque continuation token of a search.
type cursor struct {
	Term   string `json:"t"`
	Offset int    `json:"o"`
}

// EncodeCursor returns the token that resumes term at offset.
func EncodeCursor(term string, offset int) string {
	raw, _ := json.Marshal(cursor{Term: term, Offset: offset})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a token from EncodeCursor.
func DecodeCursor(token string) (string, int, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return "", 0, domain.NewValidationError("cursor", "malformed cursor")
	}

	var c cursor
	if err := json.Unmarshal(raw, &c); err != nil || c.Offset < 0 {
		return "", 0, domain.NewValidationError("cursor", "malformed cursor")
	}

	return c.Term, c.Offset, nil
}

// Query converts the request.
func (r SearchRequest) Query() (content.SearchQuery, error) {
	q := content.SearchQuery{Term: r.Term, Limit: r.Limit}

	if r.Cursor != "" {
		term, offset, err := DecodeCursor(r.Cursor)
		if err != nil {
			return content.SearchQuery{}, err
		}

		q.Term = term
		q.Offset = offset
	}

	return q, nil
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Quotes     []domain.Quote `json:"quotes"`
	Total      int            `json:"total"`
	NextCursor string         `json:"nextCursor,omitempty"`
	HasMore    bool           `json:"hasMore"`
	Recent     []string       `json:"recent"`
}

// SearchFromPage converts a result page for term.
func SearchFromPage(term string, p content.SearchPage) SearchResponse {
	resp := SearchResponse{
		Quotes:  p.Quotes,
		Total:   p.Total,
		HasMore: p.HasMore,
		Recent:  p.Recent,
	}

	if resp.Quotes == nil {
		resp.Quotes = []domain.Quote{}
	}

	if resp.Recent == nil {
		resp.Recent = []string{}
	}

	if p.HasMore {
		resp.NextCursor = EncodeCursor(strings.TrimSpace(term), p.Offset+len(p.Quotes))
	}

	return resp
}
