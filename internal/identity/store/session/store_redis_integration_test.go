//go:build integration

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cadastro/internal/identity/models"
	"cadastro/internal/identity/store/session"
	id "cadastro/pkg/domain"
	"cadastro/pkg/platform/sentinel"
	"cadastro/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *session.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = session.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestCreateFindEnd() {
	ctx := context.Background()
	now := time.Now().UTC()
	sess := &models.Session{ID: id.NewSessionID(), UserID: id.NewUserID(), CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	s.Require().NoError(s.store.Create(ctx, sess))

	found, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.UserID, found.UserID)
	s.True(found.IsActive(time.Now()))

	ttl, err := s.redis.Client.TTL(ctx, "session:"+sess.ID.String()).Result()
	s.Require().NoError(err)
	s.Greater(ttl, 59*time.Minute)

	s.Require().NoError(s.store.End(ctx, sess.ID, time.Now()))
	_, err = s.store.FindByID(ctx, sess.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.End(ctx, sess.ID, time.Now()), sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestRejectsExpiredSession() {
	past := time.Now().Add(-time.Minute)
	err := s.store.Create(context.Background(), &models.Session{ID: id.NewSessionID(), UserID: id.NewUserID(), ExpiresAt: past})
	s.Error(err)
}
