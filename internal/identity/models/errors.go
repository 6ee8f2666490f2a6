package models

import (
	dErrors "cadastro/pkg/domain-errors"
)

// Reason is the identity provider's machine-readable failure code. The
// front-end maps each one to a user message.
type Reason string

const (
	ReasonEmailInUse     Reason = "auth/email-already-in-use"
	ReasonInvalidEmail   Reason = "auth/invalid-email"
	ReasonWrongPassword  Reason = "auth/wrong-password"
	ReasonUserNotFound   Reason = "auth/user-not-found"
	ReasonWeakPassword   Reason = "auth/weak-password"
	ReasonNetworkFailure Reason = "auth/network-request-failed"
)

// AuthError is a domain error that also carries a Reason.
type AuthError struct {
	err    error
	reason Reason
}

func NewAuthError(code dErrors.Code, reason Reason, msg string) error {
	return &AuthError{err: dErrors.New(code, msg), reason: reason}
}

func (e *AuthError) Error() string  { return e.err.Error() }
func (e *AuthError) Unwrap() error  { return e.err }
func (e *AuthError) Reason() string { return string(e.reason) }
