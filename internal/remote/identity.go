package remote

import (
	"context"
	"errors"
	"net/http"

	"cadastro/internal/identity/models"
	"cadastro/internal/session"
)

// AuthError carries the identity provider's reason code (for example
// "auth/wrong-password"). Code is empty when the server gave none.
type AuthError struct {
	Code string
	Err  error
}

func (e *AuthError) Error() string {
	if e.Code == "" {
		return e.Err.Error()
	}
	return e.Code + ": " + e.Err.Error()
}

func (e *AuthError) Unwrap() error { return e.Err }

// Reason exposes Code to callers that match on reasoned errors.
func (e *AuthError) Reason() string { return e.Code }

// Identity is the front-end's view of the hosted identity provider. Every
// successful call updates the shared session.
type Identity struct {
	client *Client
}

func NewIdentity(client *Client) *Identity {
	return &Identity{client: client}
}

func (i *Identity) CreateAccount(ctx context.Context, email, password string) (*session.User, error) {
	return i.authenticate(ctx, "/v1/auth/signup", email, password)
}

func (i *Identity) SignIn(ctx context.Context, email, password string) (*session.User, error) {
	return i.authenticate(ctx, "/v1/auth/signin", email, password)
}

// SignOut revokes the server session. The local session is cleared even
// when the server call fails, so the user is never left half signed in.
func (i *Identity) SignOut(ctx context.Context) error {
	if i.client.session.Token() == "" {
		i.client.session.SignedOut()
		return nil
	}
	err := i.client.do(ctx, http.MethodPost, "/v1/auth/signout", nil, nil)
	i.client.session.SignedOut()
	if err != nil {
		return toAuthError(err)
	}
	return nil
}

// OnAuthStateChange forwards to the shared session.
func (i *Identity) OnAuthStateChange(handler session.Handler) (unsubscribe func()) {
	return i.client.session.OnAuthStateChange(handler)
}

func (i *Identity) authenticate(ctx context.Context, path, email, password string) (*session.User, error) {
	var res models.AuthResult
	body := models.Credentials{Email: email, Password: password}
	if err := i.client.do(ctx, http.MethodPost, path, body, &res); err != nil {
		return nil, toAuthError(err)
	}
	user := session.User{ID: res.User.ID, Email: res.User.Email}
	i.client.session.SignedIn(user, res.AccessToken)
	return &user, nil
}

func toAuthError(err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return &AuthError{Code: string(models.ReasonNetworkFailure), Err: err}
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return &AuthError{Code: ae.Reason, Err: err}
	}
	return &AuthError{Err: err}
}
