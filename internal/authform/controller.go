// Package authform holds the sign-in / sign-up screen.
package authform

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/asaskevich/govalidator"

	"cadastro/internal/identity/models"
	"cadastro/internal/session"
)

//go:generate mockgen -source=controller.go -destination=mocks/mocks.go -package=mocks

const (
	// SuccessDisplay is how long the account-created message stays up.
	SuccessDisplay = 3 * time.Second

	minPasswordLength = 6
	emailPattern      = `^[^\s@]+@[^\s@]+\.[^\s@]+$`
)

const (
	msgEmailRequired    = "Por favor, informe seu email"
	msgEmailInvalid     = "Por favor, informe um email válido"
	msgPasswordRequired = "Por favor, informe sua senha"
	msgPasswordShort    = "A senha deve ter no mínimo 6 caracteres"
	msgPasswordMismatch = "As senhas não coincidem"
	msgAccountCreated   = "Conta criada com sucesso!"

	msgEmailInUse       = "Este email já está sendo utilizado"
	msgAuthInvalidEmail = "Email inválido"
	msgBadCredentials   = "Email ou senha incorretos"
	msgWeakPassword     = "A senha deve ter pelo menos 6 caracteres"
	msgNetwork          = "Erro de conexão. Verifique sua internet."
	msgAuthDefault      = "Ocorreu um erro. Tente novamente."
)

var (
	ErrBusy    = errors.New("authform: operation in progress")
	ErrInvalid = errors.New("authform: invalid input")
)

// Identity is the provider the screen signs in against.
type Identity interface {
	CreateAccount(ctx context.Context, email, password string) (*session.User, error)
	SignIn(ctx context.Context, email, password string) (*session.User, error)
}

// State is a snapshot of the screen.
type State struct {
	Email      string
	Password   string
	Confirm    string
	LoginMode  bool
	Submitting bool
	Error      string
	Success    string
}

type Controller struct {
	identity Identity
	after    func(time.Duration, func()) func()
	logger   *slog.Logger

	mu          sync.Mutex
	state       State
	stopSuccess func()
}

type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithAfterFunc replaces the timer that clears the success message.
func WithAfterFunc(f func(time.Duration, func()) func()) Option {
	return func(c *Controller) { c.after = f }
}

func New(identity Identity, opts ...Option) *Controller {
	c := &Controller{
		identity: identity,
		after: func(d time.Duration, f func()) func() {
			t := time.AfterFunc(d, f)
			return func() { t.Stop() }
		},
		logger: slog.Default(),
		state:  State{LoginMode: true},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) SetEmail(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Email = v
}

func (c *Controller) SetPassword(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Password = v
}

func (c *Controller) SetConfirm(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Confirm = v
}

// ToggleMode switches between sign-in and sign-up and clears the error.
func (c *Controller) ToggleMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.LoginMode = !c.state.LoginMode
	c.state.Error = ""
	c.state.Confirm = ""
}

// Submit signs in or creates the account depending on the mode. On
// success the shared session changes, which is what moves the app past
// this screen.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Submitting {
		c.mu.Unlock()
		return ErrBusy
	}
	if msg := validateInputs(c.state); msg != "" {
		c.state.Error = msg
		c.mu.Unlock()
		return ErrInvalid
	}
	c.state.Submitting = true
	loginMode := c.state.LoginMode
	email, password := strings.TrimSpace(c.state.Email), c.state.Password
	c.mu.Unlock()

	var err error
	if loginMode {
		_, err = c.identity.SignIn(ctx, email, password)
	} else {
		_, err = c.identity.CreateAccount(ctx, email, password)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Submitting = false
	if err != nil {
		c.logger.WarnContext(ctx, "authentication failed", "login_mode", loginMode, "error", err)
		c.state.Error = MessageFor(err)
		return err
	}
	c.state.Error = ""
	c.state.Password = ""
	c.state.Confirm = ""
	if !loginMode {
		c.showSuccessLocked(msgAccountCreated)
	}
	return nil
}

// Close stops the success timer.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopSuccess != nil {
		c.stopSuccess()
		c.stopSuccess = nil
	}
}

func (c *Controller) showSuccessLocked(msg string) {
	if c.stopSuccess != nil {
		c.stopSuccess()
	}
	c.state.Success = msg
	c.stopSuccess = c.after(SuccessDisplay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.state.Success == msg {
			c.state.Success = ""
		}
		c.stopSuccess = nil
	})
}

func validateInputs(s State) string {
	switch {
	case strings.TrimSpace(s.Email) == "":
		return msgEmailRequired
	case !govalidator.Matches(s.Email, emailPattern):
		return msgEmailInvalid
	case strings.TrimSpace(s.Password) == "":
		return msgPasswordRequired
	}
	if s.LoginMode {
		return ""
	}
	switch {
	case len(s.Password) < minPasswordLength:
		return msgPasswordShort
	case s.Confirm != s.Password:
		return msgPasswordMismatch
	}
	return ""
}

// MessageFor maps an identity failure to the text shown on the screen.
func MessageFor(err error) string {
	var reasoned interface{ Reason() string }
	if !errors.As(err, &reasoned) {
		return msgAuthDefault
	}
	switch models.Reason(reasoned.Reason()) {
	case models.ReasonEmailInUse:
		return msgEmailInUse
	case models.ReasonInvalidEmail:
		return msgAuthInvalidEmail
	case models.ReasonWrongPassword, models.ReasonUserNotFound:
		return msgBadCredentials
	case models.ReasonWeakPassword:
		return msgWeakPassword
	case models.ReasonNetworkFailure:
		return msgNetwork
	}
	return msgAuthDefault
}
