package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnAuthStateChange(t *testing.T) {
	t.Run("delivers the current user immediately", func(t *testing.T) {
		s := New()
		s.SignedIn(User{ID: "u1", Email: "maria@x.com"}, "tok")

		var got *User
		unsubscribe := s.OnAuthStateChange(func(u *User) { got = u })
		defer unsubscribe()

		require.NotNil(t, got)
		assert.Equal(t, "maria@x.com", got.Email)
	})

	t.Run("delivers nil when nobody is signed in", func(t *testing.T) {
		s := New()
		calls := 0
		s.OnAuthStateChange(func(u *User) {
			calls++
			assert.Nil(t, u)
		})
		assert.Equal(t, 1, calls)
	})

	t.Run("notifies every change in order until unsubscribed", func(t *testing.T) {
		s := New()
		var seen []string
		unsubscribe := s.OnAuthStateChange(func(u *User) {
			if u == nil {
				seen = append(seen, "out")
				return
			}
			seen = append(seen, u.Email)
		})

		s.SignedIn(User{ID: "u1", Email: "maria@x.com"}, "tok")
		s.SignedOut()
		unsubscribe()
		unsubscribe()
		s.SignedIn(User{ID: "u2", Email: "joao@x.com"}, "tok2")

		assert.Equal(t, []string{"out", "maria@x.com", "out"}, seen)
	})

	t.Run("handlers cannot mutate the session user", func(t *testing.T) {
		s := New()
		s.OnAuthStateChange(func(u *User) {
			if u != nil {
				u.Email = "hacked@x.com"
			}
		})
		s.SignedIn(User{ID: "u1", Email: "maria@x.com"}, "tok")
		assert.Equal(t, "maria@x.com", s.Current().Email)
	})
}

func TestTokenFollowsState(t *testing.T) {
	s := New()
	assert.Empty(t, s.Token())
	s.SignedIn(User{ID: "u1"}, "tok")
	assert.Equal(t, "tok", s.Token())
	s.SignedOut()
	assert.Empty(t, s.Token())
	assert.Nil(t, s.Current())
}

func TestConcurrentSubscribers(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unsubscribe := s.OnAuthStateChange(func(*User) {})
			s.SignedIn(User{ID: "u"}, "t")
			unsubscribe()
		}()
	}
	wg.Wait()
	assert.Empty(t, s.handlers)
}
