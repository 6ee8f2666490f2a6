package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"cadastro/internal/audit"
	"cadastro/internal/identity/models"
	"cadastro/internal/platform/metrics"
	"cadastro/pkg/attrs"
	id "cadastro/pkg/domain"
	dErrors "cadastro/pkg/domain-errors"
	"cadastro/pkg/platform/sentinel"
	"cadastro/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	End(ctx context.Context, sessionID id.SessionID, at time.Time) error
}

type TokenGenerator interface {
	GenerateAccessToken(userID id.UserID, sessionID id.SessionID, expiresIn time.Duration) (string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the hosted identity provider: account creation, password
// sign-in and sign-out. Each sign-in opens a session; the access token is
// bound to it so signing out revokes the token.
type Service struct {
	users    UserStore
	sessions SessionStore
	tokens   TokenGenerator
	auditor  AuditPublisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tokenTTL time.Duration
	hashCost int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditor = p }
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

func New(users UserStore, sessions SessionStore, tokens TokenGenerator, opts ...Option) *Service {
	s := &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		logger:   slog.Default(),
		tokenTTL: time.Hour,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUp creates an account and signs it in.
func (s *Service) SignUp(ctx context.Context, req *models.SignUpRequest) (*models.AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	user := &models.User{
		ID:           id.NewUserID(),
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, models.NewAuthError(dErrors.CodeConflict, models.ReasonEmailInUse, "email already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	if s.metrics != nil {
		s.metrics.IncrementUsersCreated()
	}
	s.logAudit(ctx, audit.EventUserCreated, "user_id", user.ID)

	return s.openSession(ctx, user)
}

// SignIn verifies the password and opens a session.
func (s *Service) SignIn(ctx context.Context, req *models.SignInRequest) (*models.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.signInFailed(ctx, "", models.ReasonUserNotFound)
			return nil, models.NewAuthError(dErrors.CodeUnauthorized, models.ReasonUserNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
		s.signInFailed(ctx, user.ID.String(), models.ReasonWrongPassword)
		return nil, models.NewAuthError(dErrors.CodeUnauthorized, models.ReasonWrongPassword, "wrong password")
	}

	return s.openSession(ctx, user)
}

// SignOut ends the caller's session. Ending an unknown session succeeds so
// sign-out stays idempotent.
func (s *Service) SignOut(ctx context.Context, userID id.UserID, sessionID id.SessionID) error {
	if sessionID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "session required")
	}
	err := s.sessions.End(ctx, sessionID, requestcontext.Now(ctx))
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to end session")
	}
	s.logAudit(ctx, audit.EventSignedOut, "user_id", userID, "session_id", sessionID)
	return nil
}

// Me returns the authenticated user.
func (s *Service) Me(ctx context.Context, userID id.UserID) (*models.User, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "user no longer exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// IsSessionActive backs the bearer middleware.
func (s *Service) IsSessionActive(ctx context.Context, sessionID id.SessionID) (bool, error) {
	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return sess.IsActive(requestcontext.Now(ctx)), nil
}

func (s *Service) openSession(ctx context.Context, user *models.User) (*models.AuthResult, error) {
	now := requestcontext.Now(ctx)
	sess := &models.Session{
		ID:        id.NewSessionID(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenTTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to create session")
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, sess.ID, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	if s.metrics != nil {
		s.metrics.IncrementSignIn("success")
	}
	s.logAudit(ctx, audit.EventSignedIn, "user_id", user.ID, "session_id", sess.ID)

	return &models.AuthResult{
		User:        user.View(),
		AccessToken: token,
		ExpiresIn:   int(s.tokenTTL.Seconds()),
	}, nil
}

func (s *Service) signInFailed(ctx context.Context, userID string, reason models.Reason) {
	if s.metrics != nil {
		s.metrics.IncrementSignIn("failure")
	}
	s.logAudit(ctx, audit.EventSignInFailed, "user_id", userID, "reason", string(reason))
}

func (s *Service) logAudit(ctx context.Context, event audit.EventType, attributes ...any) {
	args := append(append([]any{}, attributes...), "event", string(event), "log_type", "audit")
	s.logger.InfoContext(ctx, string(event), args...)
	if s.auditor == nil {
		return
	}
	userID, _ := id.ParseUserID(attrs.ExtractString(attributes, "user_id"))
	if err := s.auditor.Emit(ctx, audit.Event{
		Type:    event,
		UserID:  userID,
		Subject: attrs.ExtractString(attributes, "session_id"),
		Reason:  attrs.ExtractString(attributes, "reason"),
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event", "error", err, "event", string(event))
	}
}
