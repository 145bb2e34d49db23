// Package domain contains core business entities and rules.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// QuoteID identifies a quote. The upstream emits it either as a JSON string or
// a JSON number, so both are accepted and normalized to the string form.
type QuoteID string

// String returns the identifier as a plain string.
func (id QuoteID) String() string {
	return string(id)
}

// UnmarshalJSON accepts both `"42"` and `42`.
func (id *QuoteID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding quote id: %w", err)
		}

		*id = QuoteID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding quote id: %w", err)
	}

	*id = QuoteID(n.String())

	return nil
}

// MarshalJSON emits canonical integers as numbers so the web client sees
// the same shape the upstream produced. Anything else, such as "007" or
// "+5", stays a string.
func (id QuoteID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}

	return json.Marshal(string(id))
}

// Quote represents a quotation shown as a card in the feed.
// Likes and dislikes are mutually exclusive per viewer.
type Quote struct {
	// ID is the unique identifier for this quote.
	ID QuoteID `json:"id"`

	// Text is the body of the quote.
	Text string `json:"text"`

	// Author is who said or wrote the quote.
	Author string `json:"author"`

	// Category is the category name the quote belongs to.
	Category string `json:"category"`

	// CategoryIcon is an optional emoji or icon name for the category.
	CategoryIcon string `json:"category_icon,omitempty"`

	LikesCount    int  `json:"likes_count"`
	DislikesCount int  `json:"dislikes_count"`
	IsLiked       bool `json:"is_liked"`
	IsDisliked    bool `json:"is_disliked"`
	IsSaved       bool `json:"is_saved"`
}

// QuoteList is an ordered feed of quotes.
type QuoteList []Quote

// IndexOf returns the position of the quote with the given id, or -1.
func (l QuoteList) IndexOf(id QuoteID) int {
	for i := range l {
		if l[i].ID == id {
			return i
		}
	}

	return -1
}

// Contains reports whether the list holds a quote with the given id.
func (l QuoteList) Contains(id QuoteID) bool {
	return l.IndexOf(id) >= 0
}

// Clone returns a copy that can be mutated without touching the original.
func (l QuoteList) Clone() QuoteList {
	if l == nil {
		return nil
	}

	out := make(QuoteList, len(l))
	copy(out, l)

	return out
}

// QuoteSet is an insertion-ordered set of quotes keyed by id.
// It backs the liked, disliked and saved collections of a viewer.
type QuoteSet struct {
	order []QuoteID
	items map[QuoteID]Quote
}

// NewQuoteSet creates an empty set.
func NewQuoteSet() *QuoteSet {
	return &QuoteSet{items: make(map[QuoteID]Quote)}
}

// Add inserts the quote. Returns false if it was already present.
func (s *QuoteSet) Add(q Quote) bool {
	if _, ok := s.items[q.ID]; ok {
		return false
	}

	s.items[q.ID] = q
	s.order = append(s.order, q.ID)

	return true
}

// Remove deletes the quote with the given id. Returns false if absent.
func (s *QuoteSet) Remove(id QuoteID) bool {
	if _, ok := s.items[id]; !ok {
		return false
	}

	delete(s.items, id)

	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return true
}

// Has reports membership.
func (s *QuoteSet) Has(id QuoteID) bool {
	_, ok := s.items[id]
	return ok
}

// Len returns the number of quotes in the set.
func (s *QuoteSet) Len() int {
	return len(s.order)
}

// List returns the quotes in insertion order.
func (s *QuoteSet) List() []Quote {
	out := make([]Quote, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}

	return out
}

// Clear empties the set.
func (s *QuoteSet) Clear() {
	s.order = nil
	s.items = make(map[QuoteID]Quote)
}
