package listing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"cadastro/internal/form"
	formmocks "cadastro/internal/form/mocks"
	"cadastro/internal/listing"
	"cadastro/internal/listing/mocks"
	"cadastro/internal/records/models"
)

type ListingSuite struct {
	suite.Suite
	ctx     context.Context
	store   *mocks.MockStore
	editor  *mocks.MockEditor
	nav     *mocks.MockNavigator
	dialogs *formmocks.MockDialogs
	list    *listing.Controller
}

func TestListingSuite(t *testing.T) {
	suite.Run(t, new(ListingSuite))
}

func (s *ListingSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.ctx = context.Background()
	s.store = mocks.NewMockStore(ctrl)
	s.editor = mocks.NewMockEditor(ctrl)
	s.nav = mocks.NewMockNavigator(ctrl)
	s.dialogs = formmocks.NewMockDialogs(ctrl)
	s.list = listing.New(s.store, s.editor, s.nav, s.dialogs)
}

func docs() []models.DocumentView {
	return []models.DocumentView{
		{
			ID: "doc-2",
			Data: map[string]any{
				"nome": "Maria Silva", "idade": float64(30), "cargo": "Analista", "telefone": "11912345678",
				"endereco": map[string]any{"cep": "01001000", "numero": "100"},
			},
			CreatedAt: time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        "doc-1",
			Data:      map[string]any{"nome": "João", "idade": float64(41), "cargo": "Gerente"},
			CreatedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func (s *ListingSuite) loaded() {
	s.store.EXPECT().List(gomock.Any(), "usuarios").Return(docs(), nil)
	s.Require().NoError(s.list.Refresh(s.ctx))
}

func (s *ListingSuite) TestRefreshBuildsCards() {
	s.loaded()

	items := s.list.Items()
	s.Require().Len(items, 2)
	s.Equal("doc-2", items[0].ID)
	s.Equal("Maria Silva", items[0].Nome)
	s.Equal("30", items[0].Idade)
	s.Equal("(11) 91234-5678", items[0].Telefone)
	s.Equal("01001000", items[0].Record.CEP)
	s.Empty(s.list.Error())
}

func (s *ListingSuite) TestRefreshFailureKeepsItems() {
	s.loaded()
	s.store.EXPECT().List(gomock.Any(), "usuarios").
		Return(nil, models.NewError(models.KindUnavailable, "dial tcp", nil))

	s.Error(s.list.Refresh(s.ctx))

	s.Len(s.list.Items(), 2)
	s.Equal("Serviço de cadastro indisponível. Verifique sua conexão.", s.list.Error())
}

func (s *ListingSuite) TestDeleteConfirmed() {
	s.loaded()
	s.dialogs.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(true)
	s.store.EXPECT().Delete(gomock.Any(), "usuarios", "doc-1").Return(nil)

	deleted, err := s.list.Delete(s.ctx, "doc-1")

	s.Require().NoError(err)
	s.True(deleted)
	s.Len(s.list.Items(), 1)
	s.Equal("doc-2", s.list.Items()[0].ID)
}

func (s *ListingSuite) TestDeleteAborted() {
	s.loaded()
	s.dialogs.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(false)

	deleted, err := s.list.Delete(s.ctx, "doc-1")

	s.NoError(err)
	s.False(deleted)
	s.Len(s.list.Items(), 2)
}

func (s *ListingSuite) TestDeleteFailure() {
	s.loaded()
	s.dialogs.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(true)
	s.store.EXPECT().Delete(gomock.Any(), "usuarios", "doc-1").
		Return(models.NewError(models.KindUnknown, "document not found", nil))

	deleted, err := s.list.Delete(s.ctx, "doc-1")

	s.Error(err)
	s.False(deleted)
	s.Equal("Erro ao deletar usuário: document not found", s.list.Error())
	s.Len(s.list.Items(), 2)
}

func (s *ListingSuite) TestDeleteUnknownItem() {
	_, err := s.list.Delete(s.ctx, "missing")
	s.ErrorIs(err, listing.ErrUnknownItem)
}

func (s *ListingSuite) TestEditHandsRecordToForm() {
	s.loaded()
	gomock.InOrder(
		s.editor.EXPECT().LoadRecord("doc-2", gomock.Any()).
			Do(func(_ string, r form.Record) {
				s.Equal("Maria Silva", r.Nome)
				s.Equal("100", r.Numero)
			}),
		s.nav.EXPECT().ToForm(),
	)

	s.NoError(s.list.Edit("doc-2"))
	s.ErrorIs(s.list.Edit("nope"), listing.ErrUnknownItem)
}

func (s *ListingSuite) TestPermissionDenied() {
	s.store.EXPECT().List(gomock.Any(), "usuarios").
		Return(nil, models.NewError(models.KindPermissionDenied, "", errors.New("401")))

	s.Error(s.list.Refresh(s.ctx))
	s.Equal("Permissão negada. Verifique se sua sessão ainda é válida.", s.list.Error())
}
