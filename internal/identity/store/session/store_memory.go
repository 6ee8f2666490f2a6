package session

import (
	"context"
	"sync"
	"time"

	"cadastro/internal/identity/models"
	id "cadastro/pkg/domain"
	"cadastro/pkg/platform/sentinel"
)

type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*models.Session
}

func New() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[id.SessionID]*models.Session)}
}

func (s *InMemorySessionStore) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *session
	s.sessions[session.ID] = &stored
	return nil
}

func (s *InMemorySessionStore) FindByID(_ context.Context, sessionID id.SessionID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[sessionID]; ok {
		found := *sess
		return &found, nil
	}
	return nil, sentinel.ErrNotFound
}

// End marks the session as ended. Ending an ended session is a no-op.
func (s *InMemorySessionStore) End(_ context.Context, sessionID id.SessionID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if sess.EndedAt == nil {
		sess.EndedAt = &at
	}
	return nil
}
