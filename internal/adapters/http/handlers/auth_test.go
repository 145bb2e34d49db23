package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quoteswipe/internal/adapters/http/dto"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
)

var ada = domain.User{ID: "u-1", Email: "ada@example.com", Name: "Ada"}

func (g *gateway) login(t *testing.T) {
	t.Helper()

	g.provider.EXPECT().Login(mock.Anything, "ada@example.com", "engine42").
		Return(&domain.AuthResult{User: ada, Credentials: domain.Credentials{Token: "opaque-token"}}, nil).Once()
	g.provider.EXPECT().Me(mock.Anything).Return(&ada, nil).Once()

	w := g.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":" ada@example.com ","password":"engine42"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAuth_LoginAndMe(t *testing.T) {
	g := newGateway(t)

	var resp dto.AuthResponse
	g.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)

	g.login(t)
	assert.True(t, g.session(t).Authenticated())

	g.provider.EXPECT().Me(mock.Anything).Return(&ada, nil).Once()

	w := g.do(t, http.MethodGet, "/api/v1/auth/me", "", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Authenticated)
	assert.Equal(t, "Ada", resp.User.Name)
}

func TestAuth_MeAsGuest(t *testing.T) {
	g := newGateway(t)

	w := g.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.CodeUnauthorized, errorCode(t, w))
}

func TestAuth_LoginValidation(t *testing.T) {
	g := newGateway(t)

	var resp dto.ErrorResponse
	w := g.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"nope","password":""}`, &resp)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.CodeValidation, resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "email")
	assert.Contains(t, resp.Error.Details, "password")
}

func TestAuth_LoginRejected(t *testing.T) {
	g := newGateway(t)
	g.provider.EXPECT().Login(mock.Anything, "ada@example.com", "wrong-pass1").
		Return(nil, domain.NewUnauthenticatedError("login")).Once()

	w := g.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"ada@example.com","password":"wrong-pass1"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, g.session(t).Authenticated())
}

func TestAuth_Register(t *testing.T) {
	g := newGateway(t)
	g.provider.EXPECT().Register(mock.Anything, "Ada", "ada@example.com", "engine42").
		Return(&domain.AuthResult{User: ada, Credentials: domain.Credentials{Token: "t"}}, nil).Once()
	g.provider.EXPECT().Me(mock.Anything).Return(&ada, nil).Once()

	var resp dto.AuthResponse
	w := g.do(t, http.MethodPost, "/api/v1/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"engine42","confirmPassword":"engine42"}`, &resp)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "u-1", resp.User.ID)
}

func TestAuth_Google(t *testing.T) {
	g := newGateway(t)

	w := g.do(t, http.MethodPost, "/api/v1/auth/google", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	g.provider.EXPECT().Google(mock.Anything, "id-token").
		Return(&domain.AuthResult{User: ada, Credentials: domain.Credentials{Token: "t"}}, nil).Once()
	g.provider.EXPECT().Me(mock.Anything).Return(&ada, nil).Once()

	w = g.do(t, http.MethodPost, "/api/v1/auth/google", `{"credential":"id-token"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_Logout(t *testing.T) {
	g := newGateway(t)
	g.login(t)

	g.provider.EXPECT().Logout(mock.Anything).Return(nil).Once()

	var resp dto.AuthResponse
	w := g.do(t, http.MethodPost, "/api/v1/auth/logout", "", &resp)

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, resp.Authenticated)
	assert.False(t, g.session(t).Authenticated())
}

func TestAuth_ForgotPassword(t *testing.T) {
	g := newGateway(t)
	g.provider.EXPECT().ForgotPassword(mock.Anything, "ada@example.com").Return(nil).Once()

	w := g.do(t, http.MethodPost, "/api/v1/auth/forgot-password", `{"email":"ada@example.com"}`, nil)
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = g.do(t, http.MethodPost, "/api/v1/auth/forgot-password", `{"email":"ada"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuth_UpdatePassword(t *testing.T) {
	g := newGateway(t)

	w := g.do(t, http.MethodPost, "/api/v1/auth/update-password", `{"password":"engine43","confirmPassword":"engine43"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	g.login(t)
	g.provider.EXPECT().UpdatePassword(mock.Anything, "engine43").Return(nil).Once()

	w = g.do(t, http.MethodPost, "/api/v1/auth/update-password", `{"password":"engine43","confirmPassword":"engine43"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = g.do(t, http.MethodPost, "/api/v1/auth/update-password", `{"password":"engine43","confirmPassword":"engine44"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
