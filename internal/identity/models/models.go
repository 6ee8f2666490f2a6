package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	id "cadastro/pkg/domain"
	dErrors "cadastro/pkg/domain-errors"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

type User struct {
	ID           id.UserID
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

type Session struct {
	ID        id.SessionID `json:"id"`
	UserID    id.UserID    `json:"user_id"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
	EndedAt   *time.Time   `json:"ended_at,omitempty"`
}

// IsActive reports whether the session can still authorise requests.
func (s *Session) IsActive(now time.Time) bool {
	return s.EndedAt == nil && now.Before(s.ExpiresAt)
}

// UserView is the public projection of a user.
type UserView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (u *User) View() UserView {
	return UserView{ID: u.ID.String(), Email: u.Email}
}

// AuthResult is returned by sign-up and sign-in.
type AuthResult struct {
	User        UserView `json:"user"`
	AccessToken string   `json:"access_token"`
	ExpiresIn   int      `json:"expires_in"`
}

// Credentials is the request body of sign-up and sign-in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Credentials) Normalize() {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
}

// Validate applies the checks shared by both flows.
func (c *Credentials) Validate() error {
	if c.Email == "" {
		return NewAuthError(dErrors.CodeValidation, ReasonInvalidEmail, "email is required")
	}
	if !govalidator.StringLength(c.Email, "3", "255") || !govalidator.IsEmail(c.Email) {
		return NewAuthError(dErrors.CodeValidation, ReasonInvalidEmail, "invalid email")
	}
	if c.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

// SignUpRequest adds the password strength rule.
type SignUpRequest struct {
	Credentials
}

func (r *SignUpRequest) Validate() error {
	if err := r.Credentials.Validate(); err != nil {
		return err
	}
	if len([]rune(r.Password)) < MinPasswordLength {
		return NewAuthError(dErrors.CodeValidation, ReasonWeakPassword, "password must be at least 6 characters")
	}
	return nil
}

// SignInRequest uses the shared checks unchanged.
type SignInRequest struct {
	Credentials
}
