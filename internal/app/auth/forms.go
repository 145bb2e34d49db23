package auth

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jsamuelsen/quoteswipe/internal/domain"
)

// Field names reported in validation details.
const (
	FieldEmail      = "email"
	FieldPassword   = "password"
	FieldConfirm    = "confirmPassword"
	FieldName       = "name"
	FieldCredential = "credential"
)

const (
	minPasswordLen = 8
	minNameLen     = 2
	maxNameLen     = 50
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	namePattern  = regexp.MustCompile(`^[\p{L} '\-]+$`)
)

// CheckEmail returns the problem with email, or "" when it is acceptable.
func CheckEmail(email string) string {
	email = strings.TrimSpace(email)

	switch {
	case email == "":
		return "Email is required"
	case !emailPattern.MatchString(email):
		return "Please enter a valid email address"
	default:
		return ""
	}
}

// CheckPassword requires at least eight characters mixing letters and
// digits.
func CheckPassword(password string) string {
	if password == "" {
		return "Password is required"
	}

	if utf8.RuneCountInString(password) < minPasswordLen {
		return "Password must be at least 8 characters"
	}

	var letter, digit bool

	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	if !letter || !digit {
		return "Password must contain at least one letter and one number"
	}

	return ""
}

// CheckName allows letters, spaces, apostrophes and hyphens.
func CheckName(name string) string {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)

	switch {
	case name == "":
		return "Name is required"
	case n < minNameLen || n > maxNameLen:
		return "Name must be between 2 and 50 characters"
	case !namePattern.MatchString(name):
		return "Name can only contain letters, spaces, apostrophes and hyphens"
	default:
		return ""
	}
}

type form domain.FieldErrors

func (f form) check(field, problem string) form {
	if problem != "" {
		f[field] = problem
	}

	return f
}

func (f form) err() error {
	return domain.FieldErrors(f).OrNil()
}

// LoginInput is the sign-in form.
type LoginInput struct {
	Email    string
	Password string
}

// Validate reports every invalid field at once.
func (in LoginInput) Validate() error {
	f := form{}.check(FieldEmail, CheckEmail(in.Email))

	if in.Password == "" {
		f.check(FieldPassword, "Password is required")
	}

	return f.err()
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

// Validate reports every invalid field at once.
func (in RegisterInput) Validate() error {
	f := form{}.
		check(FieldName, CheckName(in.Name)).
		check(FieldEmail, CheckEmail(in.Email)).
		check(FieldPassword, CheckPassword(in.Password))

	if in.Confirm != "" && in.Confirm != in.Password {
		f.check(FieldConfirm, "Passwords do not match")
	}

	return f.err()
}

// PasswordInput is the change-password form.
type PasswordInput struct {
	Password string
	Confirm  string
}

// Validate reports every invalid field at once.
func (in PasswordInput) Validate() error {
	f := form{}.check(FieldPassword, CheckPassword(in.Password))

	if in.Confirm != in.Password {
		f.check(FieldConfirm, "Passwords do not match")
	}

	return f.err()
}
