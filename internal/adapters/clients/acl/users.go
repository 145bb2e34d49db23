package acl

import (
	"context"
	"net/http"
	"strings"

	"github.com/jsamuelsen/quoteswipe/internal/adapters/clients"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
)

// UserAPI reads and writes viewer settings. It implements ports.UserDataStore.
type UserAPI struct {
	BaseAdapter
}

// NewUserAPI creates the adapter.
func NewUserAPI(client *clients.Client, serviceName string) *UserAPI {
	return &UserAPI{BaseAdapter: NewBaseAdapter(client, serviceName)}
}

type externalPreferences struct {
	Theme      string `json:"theme"`
	Font       string `json:"font"`
	Background string `json:"background"`
}

type externalPreferencesResponse struct {
	Preferences *externalPreferences `json:"preferences"`
	externalPreferences
}

type externalSubscription struct {
	Plan     string          `json:"plan"`
	Status   string          `json:"status"`
	Features map[string]bool `json:"features"`
}

// Preferences implements ports.UserDataStore. Missing fields are filled
// with the defaults.
func (a *UserAPI) Preferences(ctx context.Context) (*domain.Preferences, error) {
	var out externalPreferencesResponse
	if err := a.getJSON(ctx, "/api/user/all-preferences", "get preferences", "", &out); err != nil {
		return nil, err
	}

	ext := out.Preferences
	if ext == nil {
		ext = &out.externalPreferences
	}

	prefs := domain.Preferences{
		Theme:      ext.Theme,
		Font:       ext.Font,
		Background: ext.Background,
	}.Merge(domain.DefaultPreferences())

	return &prefs, nil
}

// SavePreferences implements ports.UserDataStore.
func (a *UserAPI) SavePreferences(ctx context.Context, prefs domain.Preferences) error {
	return a.sendJSON(ctx, http.MethodPost, "/api/user/all-preferences", "save preferences", externalPreferences{
		Theme:      prefs.Theme,
		Font:       prefs.Font,
		Background: prefs.Background,
	}, nil)
}

// Subscription implements ports.UserDataStore.
func (a *UserAPI) Subscription(ctx context.Context) (*domain.Subscription, error) {
	var out externalSubscription
	if err := a.getJSON(ctx, "/api/user/subscription", "get subscription", "", &out); err != nil {
		return nil, err
	}

	sub := domain.FreeSubscription()

	if plan := strings.ToLower(strings.TrimSpace(out.Plan)); plan != "" {
		sub.Plan = plan
	}

	sub.Active = sub.Plan != domain.PlanFree && (out.Status == "" || strings.EqualFold(out.Status, "active"))

	for name, enabled := range out.Features {
		sub.Features[name] = enabled
	}

	return &sub, nil
}
