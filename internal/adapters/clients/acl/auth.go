package acl

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jsamuelsen/quoteswipe/internal/adapters/clients"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
)

// AuthAPI drives the upstream session endpoints. It implements
// ports.AuthProvider.
type AuthAPI struct {
	BaseAdapter
}

// NewAuthAPI creates the adapter.
func NewAuthAPI(client *clients.Client, serviceName string) *AuthAPI {
	return &AuthAPI{BaseAdapter: NewBaseAdapter(client, serviceName)}
}

type externalUser struct {
	// Numeric or string ids decode alike.
	ID    domain.QuoteID `json:"id"`
	Email string         `json:"email"`
	Name  string         `json:"name"`
}

type externalAuthResponse struct {
	User      *externalUser `json:"user"`
	Token     string        `json:"token"`
	ExpiresAt *time.Time    `json:"expires_at"`
}

type externalMeResponse struct {
	User *externalUser `json:"user"`
	externalUser
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleRequest struct {
	Credential string `json:"credential"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

// Login implements ports.AuthProvider.
func (a *AuthAPI) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	return a.exchange(ctx, "/api/auth/login", "login", loginRequest{Email: email, Password: password})
}

// Register implements ports.AuthProvider.
func (a *AuthAPI) Register(ctx context.Context, name, email, password string) (*domain.AuthResult, error) {
	return a.exchange(ctx, "/api/auth/register", "register", registerRequest{Name: name, Email: email, Password: password})
}

// Google implements ports.AuthProvider.
func (a *AuthAPI) Google(ctx context.Context, credential string) (*domain.AuthResult, error) {
	return a.exchange(ctx, "/api/auth/google", "sign in with google", googleRequest{Credential: credential})
}

func (a *AuthAPI) exchange(ctx context.Context, path, operation string, in any) (*domain.AuthResult, error) {
	var out externalAuthResponse
	if err := a.sendJSON(ctx, http.MethodPost, path, operation, in, &out); err != nil {
		return nil, err
	}

	if out.Token == "" {
		return nil, domain.NewUnavailableError(a.ServiceName(), operation+" returned no session token")
	}

	result := &domain.AuthResult{Credentials: domain.Credentials{Token: out.Token}}

	if out.ExpiresAt != nil {
		result.Credentials.ExpiresAt = *out.ExpiresAt
	}

	if out.User != nil {
		result.User = translateUser(out.User)
	}

	return result, nil
}

// Me implements ports.AuthProvider.
func (a *AuthAPI) Me(ctx context.Context) (*domain.User, error) {
	var out externalMeResponse
	if err := a.getJSON(ctx, "/api/auth/me", "resolve session", "", &out); err != nil {
		return nil, err
	}

	ext := out.User
	if ext == nil {
		ext = &out.externalUser
	}

	if ext.ID == "" {
		return nil, domain.NewUnauthenticatedError("resolve session")
	}

	user := translateUser(ext)

	return &user, nil
}

// Logout implements ports.AuthProvider.
func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.sendJSON(ctx, http.MethodPost, "/api/auth/logout", "logout", struct{}{}, nil)
}

// ForgotPassword implements ports.AuthProvider.
func (a *AuthAPI) ForgotPassword(ctx context.Context, email string) error {
	return a.sendJSON(ctx, http.MethodPost, "/api/auth/forgot-password", "request password reset", emailRequest{Email: email}, nil)
}

// UpdatePassword implements ports.AuthProvider.
func (a *AuthAPI) UpdatePassword(ctx context.Context, password string) error {
	return a.sendJSON(ctx, http.MethodPost, "/api/auth/update-password", "update password", passwordRequest{Password: password}, nil)
}

func translateUser(ext *externalUser) domain.User {
	return domain.User{
		ID:    ext.ID.String(),
		Email: strings.ToLower(strings.TrimSpace(ext.Email)),
		Name:  strings.TrimSpace(ext.Name),
	}
}
