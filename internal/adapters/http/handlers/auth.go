package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quoteswipe/internal/adapters/http/dto"
	"github.com/jsamuelsen/quoteswipe/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quoteswipe/internal/app/auth"
)

// AuthHandler signs viewers in and out.
type AuthHandler struct {
	svc *auth.Service
}

// NewAuthHandler creates the handler.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register mounts the routes on rg.
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/auth")

	g.POST("/login", h.Login)
	g.POST("/register", h.RegisterUser)
	g.POST("/google", h.Google)
	g.POST("/logout", h.Logout)
	g.GET("/me", h.Me)
	g.POST("/forgot-password", h.ForgotPassword)
	g.POST("/update-password", middleware.RequireSignedIn(), h.UpdatePassword)
}

// Login signs in with email and password.
func (h *AuthHandler) Login(c *gin.Context) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	var req dto.LoginRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.Error(c, err)
		return
	}

	user, err := h.svc.Login(c.Request.Context(), sess, req.Input())
	if err != nil {
		dto.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{User: dto.UserFromDomain(user), Authenticated: true})
}

// RegisterUser creates an account and signs in.
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	var req dto.RegisterRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.Error(c, err)
		return
	}

	user, err := h.svc.Register(c.Request.Context(), sess, req.Input())
	if err != nil {
		dto.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthResponse{User: dto.UserFromDomain(user), Authenticated: true})
}

// Google exchanges a Google identity credential.
func (h *AuthHandler) Google(c *gin.Context) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	var req dto.GoogleRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.Error(c, err)
		return
	}

	user, err := h.svc.Google(c.Request.Context(), sess, req.Credential)
	if err != nil {
		dto.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{User: dto.UserFromDomain(user), Authenticated: true})
}

// Logout returns the session to guest mode.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	if err := h.svc.Logout(c.Request.Context(), sess); err != nil {
		dto.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{})
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	user, err := h.svc.Me(c.Request.Context(), sess)
	if err != nil {
		dto.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{User: dto.UserFromDomain(user), Authenticated: true})
}

// ForgotPassword requests a reset link. The answer does not reveal whether
// the address has an account.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	var req dto.ForgotPasswordRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.Error(c, err)
		return
	}

	if err := h.svc.ForgotPassword(c.Request.Context(), sess, req.Email); err != nil {
		dto.Error(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.MessageResponse{Message: "If an account exists for this email, a reset link is on its way."})
}

// UpdatePassword changes the password of the signed-in user.
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	sess, ok := viewer(c)
	if !ok {
		return
	}

	var req dto.UpdatePasswordRequest
	if err := dto.BindJSON(c, &req); err != nil {
		dto.Error(c, err)
		return
	}

	if err := h.svc.UpdatePassword(c.Request.Context(), sess, req.Input()); err != nil {
		dto.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password updated"})
}
