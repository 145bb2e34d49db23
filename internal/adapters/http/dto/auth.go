package dto

import (
	"github.com/jsamuelsen/quoteswipe/internal/app/auth"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
)

// Auth forms are checked by the auth service so that every field problem
// is reported at once; binding only rejects malformed bodies.

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Input converts the form.
func (r LoginRequest) Input() auth.LoginInput {
	return auth.LoginInput{Email: r.Email, Password: r.Password}
}

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Input converts the form.
func (r RegisterRequest) Input() auth.RegisterInput {
	return auth.RegisterInput{Name: r.Name, Email: r.Email, Password: r.Password, Confirm: r.ConfirmPassword}
}

// GoogleRequest carries a Google identity credential.
type GoogleRequest struct {
	Credential string `json:"credential"`
}

// ForgotPasswordRequest asks for a reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// UpdatePasswordRequest changes the signed-in viewer's password.
type UpdatePasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Input converts the form.
func (r UpdatePasswordRequest) Input() auth.PasswordInput {
	return auth.PasswordInput{Password: r.Password, Confirm: r.ConfirmPassword}
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserFromDomain converts a user; nil stays nil.
func UserFromDomain(u *domain.User) *UserResponse {
	if u == nil {
		return nil
	}

	return &UserResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

// AuthResponse answers login, registration and Me.
type AuthResponse struct {
	User          *UserResponse `json:"user"`
	Authenticated bool          `json:"authenticated"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
