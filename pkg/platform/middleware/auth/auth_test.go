package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	id "cadastro/pkg/domain"
	"cadastro/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) { return s.claims, s.err }

type stubSessions struct {
	active bool
	err    error
}

func (s stubSessions) IsSessionActive(context.Context, id.SessionID) (bool, error) {
	return s.active, s.err
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	userID := id.NewUserID()
	sessionID := id.NewSessionID()
	validClaims := &JWTClaims{UserID: userID.String(), SessionID: sessionID.String(), JTI: "jti-1"}

	var seenUser id.UserID
	var seenSession id.SessionID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = requestcontext.UserID(r.Context())
		seenSession = requestcontext.SessionID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		header     string
		validator  JWTValidator
		sessions   SessionChecker
		wantStatus int
	}{
		{"missing header", "", stubValidator{claims: validClaims}, stubSessions{active: true}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", stubValidator{claims: validClaims}, stubSessions{active: true}, http.StatusUnauthorized},
		{"invalid token", "Bearer x", stubValidator{err: errors.New("bad")}, stubSessions{active: true}, http.StatusUnauthorized},
		{"bad subject", "Bearer x", stubValidator{claims: &JWTClaims{UserID: "nope", SessionID: sessionID.String()}}, stubSessions{active: true}, http.StatusUnauthorized},
		{"ended session", "Bearer x", stubValidator{claims: validClaims}, stubSessions{active: false}, http.StatusUnauthorized},
		{"session lookup failure", "Bearer x", stubValidator{claims: validClaims}, stubSessions{err: errors.New("redis down")}, http.StatusServiceUnavailable},
		{"valid token", "Bearer x", stubValidator{claims: validClaims}, stubSessions{active: true}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seenUser, seenSession = id.UserID{}, id.SessionID{}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			RequireAuth(tt.validator, tt.sessions, logger)(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, userID, seenUser)
				assert.Equal(t, sessionID, seenSession)
			} else {
				assert.True(t, seenUser.IsNil())
			}
		})
	}
}
