//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cadastro/internal/platform/postgres"
	"cadastro/internal/records/models"
	"cadastro/internal/records/store"
	id "cadastro/pkg/domain"
	"cadastro/pkg/platform/sentinel"
	"cadastro/pkg/testutil/containers"
)

type PostgresDocumentStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.PostgresStore
}

func TestPostgresDocumentStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresDocumentStoreSuite))
}

func (s *PostgresDocumentStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.Require().NoError(postgres.Migrate(context.Background(), s.pg.DB))
	s.store = store.NewPostgres(s.pg.DB)
}

func (s *PostgresDocumentStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), "documents"))
}

func newDocument(owner id.UserID, createdAt time.Time) *models.Document {
	return &models.Document{
		ID:         id.NewDocumentID(),
		Collection: "usuarios",
		OwnerID:    owner,
		Data: map[string]any{
			"nome":     "Maria Silva",
			"idade":    float64(30),
			"endereco": map[string]any{"cep": "01001000", "estado": "SP"},
		},
		CreatedAt: createdAt.UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresDocumentStoreSuite) TestJSONBRoundTrip() {
	ctx := context.Background()
	doc := newDocument(id.NewUserID(), time.Now())
	s.Require().NoError(s.store.Insert(ctx, doc))

	found, err := s.store.Get(ctx, "usuarios", doc.ID)
	s.Require().NoError(err)
	s.Equal(doc.Data, found.Data)
	s.Equal(doc.OwnerID, found.OwnerID)
	s.True(doc.CreatedAt.Equal(found.CreatedAt))
	s.Nil(found.UpdatedAt)
}

func (s *PostgresDocumentStoreSuite) TestListByOwnerOrdersNewestFirst() {
	ctx := context.Background()
	owner := id.NewUserID()
	base := time.Now().Add(-time.Hour)
	older := newDocument(owner, base)
	newer := newDocument(owner, base.Add(time.Minute))
	s.Require().NoError(s.store.Insert(ctx, older))
	s.Require().NoError(s.store.Insert(ctx, newer))
	s.Require().NoError(s.store.Insert(ctx, newDocument(id.NewUserID(), base)))

	docs, err := s.store.ListByOwner(ctx, "usuarios", owner)
	s.Require().NoError(err)
	s.Require().Len(docs, 2)
	s.Equal(newer.ID, docs[0].ID)
}

func (s *PostgresDocumentStoreSuite) TestUpdateDeleteAndMissing() {
	ctx := context.Background()
	doc := newDocument(id.NewUserID(), time.Now())
	s.Require().NoError(s.store.Insert(ctx, doc))

	at := time.Now().UTC().Truncate(time.Microsecond)
	doc.Data["nome"] = "Maria Souza"
	doc.UpdatedAt = &at
	s.Require().NoError(s.store.Update(ctx, doc))

	found, err := s.store.Get(ctx, "usuarios", doc.ID)
	s.Require().NoError(err)
	s.Equal("Maria Souza", found.Data["nome"])
	s.Require().NotNil(found.UpdatedAt)
	s.True(at.Equal(*found.UpdatedAt))

	s.Require().NoError(s.store.Delete(ctx, "usuarios", doc.ID))
	_, err = s.store.Get(ctx, "usuarios", doc.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(ctx, "usuarios", doc.ID), sentinel.ErrNotFound)
}
