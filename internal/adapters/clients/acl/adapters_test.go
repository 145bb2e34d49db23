package acl

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quoteswipe/internal/adapters/clients"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
	"github.com/jsamuelsen/quoteswipe/internal/platform/config"
	"github.com/jsamuelsen/quoteswipe/internal/ports"
)

// upstream serves canned bodies per "METHOD path" and records requests.
type upstream struct {
	t        *testing.T
	mu       sync.Mutex
	routes   map[string]func(w http.ResponseWriter, r *http.Request)
	requests []recordedRequest
}

type recordedRequest struct {
	Method string
	URL    string
	Auth   string
	Body   string
}

func newUpstream(t *testing.T) (*upstream, *clients.Client) {
	t.Helper()

	u := &upstream{t: t, routes: map[string]func(http.ResponseWriter, *http.Request){}}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		u.mu.Lock()
		u.requests = append(u.requests, recordedRequest{
			Method: r.Method,
			URL:    r.URL.RequestURI(),
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
		h, ok := u.routes[r.Method+" "+r.URL.Path]
		u.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		h(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := clients.New(&clients.Config{
		BaseURL:     server.URL,
		ServiceName: "quote-api",
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2,
		},
		Circuit: config.CircuitBreakerConfig{MaxFailures: 10, Timeout: time.Second, HalfOpenLimit: 1},
	})
	require.NoError(t, err)

	return u, client
}

func (u *upstream) json(route string, status int, body string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.routes[route] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (u *upstream) last() recordedRequest {
	u.t.Helper()

	u.mu.Lock()
	defer u.mu.Unlock()

	require.NotEmpty(u.t, u.requests)

	return u.requests[len(u.requests)-1]
}

func viewerCtx(token string) context.Context {
	return ports.WithViewer(context.Background(), &ports.Viewer{SessionID: "s-1", Token: token})
}

func TestQuoteAPI_ListQuotes(t *testing.T) {
	u, client := newUpstream(t)
	api := NewQuoteAPI(client, "quote-api")

	u.json("GET /api/quotes", http.StatusOK, `[
		{"id": 1, "text": " Stay hungry. ", "author": "Jobs", "category": "life", "likes_count": 3},
		{"id": "2", "text": "", "author": "blank"},
		{"id": 3, "text": "Be yourself.", "is_liked": true, "is_disliked": true}
	]`)

	quotes, err := api.ListQuotes(viewerCtx("tok"), "life,love")
	require.NoError(t, err)

	require.Len(t, quotes, 2)
	assert.Equal(t, domain.QuoteID("1"), quotes[0].ID)
	assert.Equal(t, "Stay hungry.", quotes[0].Text)
	assert.Equal(t, 3, quotes[0].LikesCount)
	assert.True(t, quotes[1].IsLiked)
	assert.False(t, quotes[1].IsDisliked)

	req := u.last()
	assert.Equal(t, "/api/quotes?categories=life%2Clove", req.URL)
	assert.Equal(t, "Bearer tok", req.Auth)
}

func TestQuoteAPI_ListQuotesWrapped(t *testing.T) {
	u, client := newUpstream(t)
	api := NewQuoteAPI(client, "quote-api")

	u.json("GET /api/quotes", http.StatusOK, `{"quotes":[{"id":7,"text":"x"}]}`)

	quotes, err := api.ListQuotes(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "/api/quotes", u.last().URL)
	assert.Empty(t, u.last().Auth)
}

func TestQuoteAPI_ListQuotesUnavailable(t *testing.T) {
	u, client := newUpstream(t)
	api := NewQuoteAPI(client, "quote-api")

	u.json("GET /api/quotes", http.StatusOK, `not json`)

	_, err := api.ListQuotes(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestQuoteAPI_Categories(t *testing.T) {
	u, client := newUpstream(t)
	api := NewQuoteAPI(client, "quote-api")

	u.json("GET /api/categories", http.StatusOK, `{"categories":[{"id":1,"name":"life","icon":"🌱"}]}`)
	u.json("GET /api/category-groups", http.StatusOK, `[{"id":"g1","name":"Mind","categories":[{"id":2,"name":"wisdom"}]}]`)

	cats, err := api.Categories(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{{ID: "1", Name: "life", Icon: "🌱"}}, cats)
	assert.Equal(t, "/api/categories?onboarding=true", u.last().URL)

	groups, err := api.CategoryGroups(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Mind", groups[0].Categories[0].Group)
	assert.Equal(t, "/api/category-groups", u.last().URL)
}

func TestQuoteAPI_CategoriesRejectsUnnamed(t *testing.T) {
	u, client := newUpstream(t)
	api := NewQuoteAPI(client, "quote-api")

	u.json("GET /api/categories", http.StatusOK, `[{"id":1}]`)

	_, err := api.Categories(context.Background(), false)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestQuoteAPI_RecordSwipes(t *testing.T) {
	u, client := newUpstream(t)
	api := NewQuoteAPI(client, "quote-api")

	u.json("POST /api/user/likes", http.StatusOK, `{"success":true}`)
	u.json("POST /api/user/dislikes", http.StatusNoContent, ``)

	require.NoError(t, api.RecordLike(viewerCtx("tok"), "42"))
	assert.JSONEq(t, `{"quoteId":42}`, u.last().Body)

	require.NoError(t, api.RecordDislike(viewerCtx("tok"), "abc"))
	assert.JSONEq(t, `{"quoteId":"abc"}`, u.last().Body)

	err := api.RecordLike(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAuthAPI_Login(t *testing.T) {
	u, client := newUpstream(t)
	api := NewAuthAPI(client, "quote-api")

	u.json("POST /api/auth/login", http.StatusOK, `{"user":{"id":9,"email":"Ada@Example.com ","name":"Ada"},"token":"jwt"}`)

	result, err := api.Login(context.Background(), "ada@example.com", "s3cretpass")
	require.NoError(t, err)

	assert.Equal(t, domain.User{ID: "9", Email: "ada@example.com", Name: "Ada"}, result.User)
	assert.Equal(t, "jwt", result.Credentials.Token)
	assert.True(t, result.Credentials.ExpiresAt.IsZero())

	var sent map[string]string
	require.NoError(t, json.Unmarshal([]byte(u.last().Body), &sent))
	assert.Equal(t, "ada@example.com", sent["email"])
}

func TestAuthAPI_LoginRejected(t *testing.T) {
	u, client := newUpstream(t)
	api := NewAuthAPI(client, "quote-api")

	u.json("POST /api/auth/login", http.StatusUnauthorized, `{"error":"Invalid email or password"}`)

	_, err := api.Login(context.Background(), "ada@example.com", "wrongpass1")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "Invalid email or password")
}

func TestAuthAPI_ExchangeWithoutToken(t *testing.T) {
	u, client := newUpstream(t)
	api := NewAuthAPI(client, "quote-api")

	u.json("POST /api/auth/google", http.StatusOK, `{"user":{"id":1}}`)

	_, err := api.Google(context.Background(), "cred")
	require.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestAuthAPI_Me(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrapped", `{"user":{"id":"u1","email":"a@b.co","name":"A"}}`},
		{"bare", `{"id":"u1","email":"a@b.co","name":"A"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, client := newUpstream(t)
			api := NewAuthAPI(client, "quote-api")

			u.json("GET /api/auth/me", http.StatusOK, tt.body)

			user, err := api.Me(viewerCtx("tok"))
			require.NoError(t, err)
			assert.Equal(t, "u1", user.ID)
			assert.Equal(t, "Bearer tok", u.last().Auth)
		})
	}
}

func TestAuthAPI_MeWithoutUser(t *testing.T) {
	u, client := newUpstream(t)
	api := NewAuthAPI(client, "quote-api")

	u.json("GET /api/auth/me", http.StatusOK, `{"user":null}`)

	_, err := api.Me(context.Background())
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAuthAPI_SimpleCalls(t *testing.T) {
	u, client := newUpstream(t)
	api := NewAuthAPI(client, "quote-api")

	u.json("POST /api/auth/logout", http.StatusOK, `{}`)
	u.json("POST /api/auth/forgot-password", http.StatusOK, `{"message":"sent"}`)
	u.json("POST /api/auth/update-password", http.StatusOK, `{}`)
	u.json("POST /api/auth/register", http.StatusConflict, `{"error":"Email already registered"}`)

	require.NoError(t, api.Logout(viewerCtx("tok")))
	require.NoError(t, api.ForgotPassword(context.Background(), "a@b.co"))
	assert.JSONEq(t, `{"email":"a@b.co"}`, u.last().Body)
	require.NoError(t, api.UpdatePassword(viewerCtx("tok"), "newpass123"))

	_, err := api.Register(context.Background(), "Ada", "a@b.co", "s3cretpass")
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "Email already registered")
}

func TestUserAPI_Preferences(t *testing.T) {
	u, client := newUpstream(t)
	api := NewUserAPI(client, "quote-api")

	u.json("GET /api/user/all-preferences", http.StatusOK, `{"preferences":{"theme":"midnight"}}`)
	u.json("POST /api/user/all-preferences", http.StatusOK, `{}`)

	prefs, err := api.Preferences(viewerCtx("tok"))
	require.NoError(t, err)
	assert.Equal(t, domain.Preferences{Theme: "midnight", Font: domain.DefaultFont, Background: domain.DefaultBackground}, *prefs)

	require.NoError(t, api.SavePreferences(viewerCtx("tok"), domain.Preferences{Theme: "a", Font: "b", Background: "c"}))
	assert.JSONEq(t, `{"theme":"a","font":"b","background":"c"}`, u.last().Body)
}

func TestUserAPI_Subscription(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		plan   string
		active bool
	}{
		{"premium active", `{"plan":"Premium","status":"active","features":{"translate":true}}`, "premium", true},
		{"premium cancelled", `{"plan":"premium","status":"canceled"}`, "premium", false},
		{"empty", `{}`, domain.PlanFree, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, client := newUpstream(t)
			api := NewUserAPI(client, "quote-api")

			u.json("GET /api/user/subscription", http.StatusOK, tt.body)

			sub, err := api.Subscription(viewerCtx("tok"))
			require.NoError(t, err)
			assert.Equal(t, tt.plan, sub.Plan)
			assert.Equal(t, tt.active, sub.Active)
			assert.NotNil(t, sub.Features)
		})
	}
}

func TestContentAPI_StatsAndReviews(t *testing.T) {
	u, client := newUpstream(t)
	api := NewContentAPI(client, "quote-api")

	u.json("GET /api/stats", http.StatusOK, `{"total_quotes":120,"total_users":8,"total_likes":40}`)
	u.json("GET /api/reviews", http.StatusOK, `{"reviews":[{"id":1,"name":"Sam","rating":9,"text":"Lovely"},{"id":2}]}`)

	stats, err := api.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{TotalQuotes: 120, TotalUsers: 8, TotalLikes: 40}, *stats)

	reviews, err := api.Reviews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Review{{ID: "1", Author: "Sam", Rating: 5, Comment: "Lovely"}}, reviews)
}

func TestContentAPI_Translate(t *testing.T) {
	u, client := newUpstream(t)
	api := NewContentAPI(client, "quote-api")

	u.json("POST /api/translate", http.StatusOK, `{"translatedText":"Hola"}`)

	tr, err := api.Translate(context.Background(), "Hello", "es", "en")
	require.NoError(t, err)
	assert.Equal(t, domain.Translation{Text: "Hola", TargetLanguage: "es", SourceLanguage: "en", Translated: true}, *tr)
	assert.JSONEq(t, `{"text":"Hello","targetLanguage":"es","sourceLanguage":"en"}`, u.last().Body)

	u.json("POST /api/translate", http.StatusOK, `{}`)

	_, err = api.Translate(context.Background(), "Hello", "es", "")
	require.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestContentAPI_Track(t *testing.T) {
	u, client := newUpstream(t)
	api := NewContentAPI(client, "quote-api")

	u.json("POST /api/track", http.StatusOK, `{}`)

	err := api.Track(context.Background(), domain.VisitorInfo{SessionID: "s-1", UserAgent: "ua", Device: "mobile"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"sessionId":"s-1","userAgent":"ua","device":"mobile"}`, u.last().Body)
}

func TestNewBaseAdapter_RequiresClient(t *testing.T) {
	assert.Panics(t, func() { NewBaseAdapter(nil, "quote-api") })
}
