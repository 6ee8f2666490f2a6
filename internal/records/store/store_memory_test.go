package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cadastro/internal/records/models"
	id "cadastro/pkg/domain"
	"cadastro/pkg/platform/sentinel"
)

type DocumentStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	owner id.UserID
}

func TestDocumentStoreSuite(t *testing.T) {
	suite.Run(t, new(DocumentStoreSuite))
}

func (s *DocumentStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
	s.owner = id.NewUserID()
}

func (s *DocumentStoreSuite) newDoc(owner id.UserID, createdAt time.Time) *models.Document {
	return &models.Document{
		ID:         id.NewDocumentID(),
		Collection: "usuarios",
		OwnerID:    owner,
		Data:       map[string]any{"nome": "Maria Silva", "endereco": map[string]any{"cep": "01001000"}},
		CreatedAt:  createdAt,
	}
}

func (s *DocumentStoreSuite) TestInsertAndGet() {
	doc := s.newDoc(s.owner, time.Now())
	s.Require().NoError(s.store.Insert(s.ctx, doc))

	found, err := s.store.Get(s.ctx, "usuarios", doc.ID)
	s.Require().NoError(err)
	s.Equal(doc.Data, found.Data)
	s.Equal(s.owner, found.OwnerID)
}

func (s *DocumentStoreSuite) TestInsertDuplicateIDConflicts() {
	doc := s.newDoc(s.owner, time.Now())
	s.Require().NoError(s.store.Insert(s.ctx, doc))
	s.ErrorIs(s.store.Insert(s.ctx, doc), sentinel.ErrConflict)
}

func (s *DocumentStoreSuite) TestGetIsScopedToCollection() {
	doc := s.newDoc(s.owner, time.Now())
	s.Require().NoError(s.store.Insert(s.ctx, doc))

	_, err := s.store.Get(s.ctx, "notas", doc.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *DocumentStoreSuite) TestListByOwnerNewestFirst() {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	older := s.newDoc(s.owner, base)
	newer := s.newDoc(s.owner, base.Add(time.Minute))
	foreign := s.newDoc(id.NewUserID(), base.Add(2*time.Minute))
	for _, d := range []*models.Document{older, newer, foreign} {
		s.Require().NoError(s.store.Insert(s.ctx, d))
	}

	docs, err := s.store.ListByOwner(s.ctx, "usuarios", s.owner)
	s.Require().NoError(err)
	s.Require().Len(docs, 2)
	s.Equal(newer.ID, docs[0].ID)
	s.Equal(older.ID, docs[1].ID)
}

func (s *DocumentStoreSuite) TestUpdateAndDelete() {
	doc := s.newDoc(s.owner, time.Now())
	s.Require().NoError(s.store.Insert(s.ctx, doc))

	at := time.Now()
	doc.Data = map[string]any{"nome": "Maria Souza"}
	doc.UpdatedAt = &at
	s.Require().NoError(s.store.Update(s.ctx, doc))

	found, err := s.store.Get(s.ctx, "usuarios", doc.ID)
	s.Require().NoError(err)
	s.Equal("Maria Souza", found.Data["nome"])
	s.Require().NotNil(found.UpdatedAt)

	s.Require().NoError(s.store.Delete(s.ctx, "usuarios", doc.ID))
	s.ErrorIs(s.store.Delete(s.ctx, "usuarios", doc.ID), sentinel.ErrNotFound)
	s.ErrorIs(s.store.Update(s.ctx, doc), sentinel.ErrNotFound)
}

func (s *DocumentStoreSuite) TestReturnsDeepCopies() {
	doc := s.newDoc(s.owner, time.Now())
	s.Require().NoError(s.store.Insert(s.ctx, doc))
	doc.Data["endereco"].(map[string]any)["cep"] = "99999999"

	found, err := s.store.Get(s.ctx, "usuarios", doc.ID)
	s.Require().NoError(err)
	found.Data["nome"] = "changed"

	again, err := s.store.Get(s.ctx, "usuarios", doc.ID)
	s.Require().NoError(err)
	s.Equal("Maria Silva", again.Data["nome"])
	s.Equal("01001000", again.Data["endereco"].(map[string]any)["cep"])
}
