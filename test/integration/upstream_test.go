//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const upstreamToken = "tok-integration"

// upstream is an in-memory quote API. It serves a fixed catalogue and
// records every write and every header it was sent.
type upstream struct {
	*httptest.Server

	mu       sync.Mutex
	likes    []string
	dislikes []string
	headers  []http.Header
	failures int
	tracked  int
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()

	u := &upstream{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/quotes", u.quotes)
	mux.HandleFunc("GET /api/categories", u.categories)
	mux.HandleFunc("GET /api/category-groups", u.groups)
	mux.HandleFunc("POST /api/auth/login", u.login)
	mux.HandleFunc("GET /api/auth/me", u.me)
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	mux.HandleFunc("POST /api/user/likes", u.record(&u.likes))
	mux.HandleFunc("POST /api/user/dislikes", u.record(&u.dislikes))
	mux.HandleFunc("POST /api/track", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.tracked++
		u.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"total_quotes": 12, "total_users": 3, "total_likes": 40})
	})
	mux.HandleFunc("GET /api/reviews", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"reviews": []map[string]any{{"id": 1, "name": "Ada", "rating": 5, "text": "Lovely."}}})
	})

	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.headers = append(u.headers, r.Header.Clone())
		fail := u.failures > 0
		if fail {
			u.failures--
		}
		u.mu.Unlock()

		if fail {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "upstream is resting"})
			return
		}

		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(u.Close)

	return u
}

// failNext makes the next n requests answer 503.
func (u *upstream) failNext(n int) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.failures = n
}

func (u *upstream) recorded() (likes, dislikes []string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	return append([]string(nil), u.likes...), append([]string(nil), u.dislikes...)
}

func (u *upstream) lastHeader(name string) string {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.headers) == 0 {
		return ""
	}

	return u.headers[len(u.headers)-1].Get(name)
}

var catalogue = []struct {
	ID       int
	Text     string
	Author   string
	Category string
}{
	{1, "Waste no more time arguing what a good man should be. Be one.", "Marcus Aurelius", "wisdom"},
	{2, "We suffer more often in imagination than in reality.", "Seneca", "wisdom"},
	{3, "No man ever steps in the same river twice.", "Heraclitus", "wisdom"},
	{4, "The unexamined life is not worth living.", "Socrates", "wisdom"},
	{5, "Well begun is half done.", "Aristotle", "wisdom"},
	{6, "Happiness depends upon ourselves.", "Aristotle", "wisdom"},
	{7, "He who has a why to live can bear almost any how.", "Nietzsche", "courage"},
	{8, "Fortune favors the bold.", "Virgil", "courage"},
}

func (u *upstream) quotes(w http.ResponseWriter, r *http.Request) {
	var filter map[string]bool
	if cats := r.URL.Query().Get("categories"); cats != "" {
		filter = map[string]bool{}
		for _, c := range strings.Split(cats, ",") {
			filter[c] = true
		}
	}

	liked := map[string]bool{}
	if r.Header.Get("Authorization") == "Bearer "+upstreamToken {
		likes, _ := u.recorded()
		for _, id := range likes {
			liked[id] = true
		}
	}

	out := make([]map[string]any, 0, len(catalogue))
	for _, q := range catalogue {
		if filter != nil && !filter[q.Category] {
			continue
		}

		out = append(out, map[string]any{
			"id":       q.ID,
			"text":     q.Text,
			"author":   q.Author,
			"category": q.Category,
			"is_liked": liked[fmt.Sprint(q.ID)],
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"quotes": out})
}

func (u *upstream) categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": []map[string]any{
		{"id": 1, "name": "wisdom", "icon": "owl"},
		{"id": 2, "name": "courage", "icon": "lion"},
	}})
}

func (u *upstream) groups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"groups": []map[string]any{
		{"id": 1, "name": "Philosophy", "categories": []map[string]any{{"id": 1, "name": "wisdom"}}},
	}})
}

func (u *upstream) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Password != "engine42" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":  map[string]any{"id": 7, "email": body.Email, "name": "Ada"},
		"token": upstreamToken,
	})
}

func (u *upstream) me(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+upstreamToken {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": 7, "email": "ada@example.com", "name": "Ada"}})
}

func (u *upstream) record(into *[]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+upstreamToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
			return
		}

		var body struct {
			QuoteID json.Number `json:"quoteId"`
		}

		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		u.mu.Lock()
		*into = append(*into, body.QuoteID.String())
		u.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
