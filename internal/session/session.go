// Package session holds the front-end's authentication state. It is created
// once at startup and passed to everything that needs to know who is
// signed in.
package session

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

// User is the signed-in account as seen by the front-end.
type User struct {
	ID    string
	Email string
}

// Handler receives the current user, or nil when signed out.
type Handler func(user *User)

// Session is safe for concurrent use. Handlers run synchronously on the
// goroutine that changed the state, outside the lock.
type Session struct {
	mu       sync.RWMutex
	user     *User
	token    string
	handlers map[int]Handler
	nextID   int
}

func New() *Session {
	return &Session{handlers: make(map[int]Handler)}
}

// Current returns a copy of the signed-in user, or nil.
func (s *Session) Current() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

// Token returns the bearer token of the signed-in user, or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SignedIn records a successful sign-in and notifies subscribers.
func (s *Session) SignedIn(user User, token string) {
	s.mu.Lock()
	s.user = &user
	s.token = token
	handlers := s.snapshot()
	s.mu.Unlock()

	notify(handlers, &user)
}

// SignedOut clears the state and notifies subscribers. Signing out twice
// notifies twice.
func (s *Session) SignedOut() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	handlers := s.snapshot()
	s.mu.Unlock()

	notify(handlers, nil)
}

// OnAuthStateChange subscribes handler. It is called immediately with the
// current user and again on every change until the returned function is
// called.
func (s *Session) OnAuthStateChange(handler Handler) (unsubscribe func()) {
	s.mu.Lock()
	subID := s.nextID
	s.nextID++
	s.handlers[subID] = handler
	current := copyUser(s.user)
	s.mu.Unlock()

	handler(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.handlers, subID)
			s.mu.Unlock()
		})
	}
}

// snapshot returns handlers in subscription order. Caller holds the lock.
func (s *Session) snapshot() []Handler {
	ids := lo.Keys(s.handlers)
	sort.Ints(ids)
	return lo.Map(ids, func(subID int, _ int) Handler { return s.handlers[subID] })
}

func notify(handlers []Handler, user *User) {
	for _, h := range handlers {
		h(copyUser(user))
	}
}

func copyUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
