package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"cadastro/internal/records/handler/mocks"
	"cadastro/internal/records/models"
	id "cadastro/pkg/domain"
	dErrors "cadastro/pkg/domain-errors"
	"cadastro/pkg/platform/httputil"
	"cadastro/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	userID id.UserID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupSuite() {
	s.userID = id.NewUserID()
}

func (s *HandlerSuite) fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := httputil.BearerToken(r); !ok {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing token"))
			return
		}
		next.ServeHTTP(w, testutil.WithAuth(r, s.userID, id.NewSessionID()))
	})
}

func (s *HandlerSuite) newHandler(t *testing.T) (*mocks.MockService, chi.Router) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	router := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)), s.fakeAuth).Register(router)
	return svc, router
}

func (s *HandlerSuite) do(t *testing.T, router chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.DoRequest(router, testutil.WithBearer(testutil.NewRequestWithBody(t, method, path, body), "token"))
}

func (s *HandlerSuite) TestInsert() {
	s.T().Run("201 with the new id", func(t *testing.T) {
		svc, router := s.newHandler(t)
		docID := id.NewDocumentID()
		svc.EXPECT().Insert(gomock.Any(), s.userID, "usuarios", map[string]any{"nome": "Maria Silva", "idade": float64(30)}).
			Return(docID, nil)

		rr := s.do(t, router, http.MethodPost, "/v1/collections/usuarios/documents", `{"data":{"nome":"Maria Silva","idade":30}}`)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		got := testutil.UnmarshalResponse[models.InsertResponse](t, rr)
		assert.Equal(t, docID.String(), got.ID)
	})

	s.T().Run("400 without data", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().Insert(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		rr := s.do(t, router, http.MethodPost, "/v1/collections/usuarios/documents", `{"data":{}}`)

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.T().Run("401 without a token", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().Insert(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		rr := testutil.DoRequest(router, testutil.NewRequestWithBody(t, http.MethodPost, "/v1/collections/usuarios/documents", `{"data":{"a":1}}`))

		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
	})

	s.T().Run("503 passes through", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().Insert(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(id.DocumentID{}, dErrors.New(dErrors.CodeUnavailable, "failed to insert document"))

		rr := s.do(t, router, http.MethodPost, "/v1/collections/usuarios/documents", `{"data":{"a":1}}`)

		testutil.AssertStatusAndError(t, rr, http.StatusServiceUnavailable, string(dErrors.CodeUnavailable))
	})
}

func (s *HandlerSuite) TestList() {
	svc, router := s.newHandler(s.T())
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	docs := []*models.Document{
		{ID: id.NewDocumentID(), Data: map[string]any{"nome": "Maria Silva"}, CreatedAt: created},
		{ID: id.NewDocumentID(), Data: map[string]any{"nome": "João Souza"}, CreatedAt: created.Add(-time.Hour)},
	}
	svc.EXPECT().List(gomock.Any(), s.userID, "usuarios").Return(docs, nil)

	rr := s.do(s.T(), router, http.MethodGet, "/v1/collections/usuarios/documents", "")

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	got := testutil.UnmarshalResponse[[]models.DocumentView](s.T(), rr)
	require.Len(s.T(), *got, 2)
	s.Equal(docs[0].ID.String(), (*got)[0].ID)
	s.Equal("Maria Silva", (*got)[0].Data["nome"])
	s.Nil((*got)[0].UpdatedAt)
}

func (s *HandlerSuite) TestGetUpdateDelete() {
	docID := id.NewDocumentID()
	path := "/v1/collections/usuarios/documents/" + docID.String()

	s.T().Run("get returns the document", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().Get(gomock.Any(), s.userID, "usuarios", docID).
			Return(&models.Document{ID: docID, Data: map[string]any{"nome": "Maria Silva"}}, nil)

		rr := s.do(t, router, http.MethodGet, path, "")

		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "id", docID.String())
	})

	s.T().Run("get on another user's document is 403", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeForbidden, "document belongs to another user"))

		rr := s.do(t, router, http.MethodGet, path, "")

		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, string(dErrors.CodeForbidden))
	})

	s.T().Run("malformed id is rejected before the service", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		rr := s.do(t, router, http.MethodGet, "/v1/collections/usuarios/documents/not-a-uuid", "")

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})

	s.T().Run("update returns the merged document", func(t *testing.T) {
		svc, router := s.newHandler(t)
		at := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
		svc.EXPECT().Update(gomock.Any(), s.userID, "usuarios", docID, map[string]any{"cargo": "Gerente"}).
			Return(&models.Document{ID: docID, Data: map[string]any{"cargo": "Gerente"}, UpdatedAt: &at}, nil)

		rr := s.do(t, router, http.MethodPut, path, `{"data":{"cargo":"Gerente"}}`)

		testutil.AssertStatus(t, rr, http.StatusOK)
		got := testutil.UnmarshalResponse[models.DocumentView](t, rr)
		require.NotNil(t, got.UpdatedAt)
		assert.True(t, at.Equal(*got.UpdatedAt))
	})

	s.T().Run("delete is 204", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().Delete(gomock.Any(), s.userID, "usuarios", docID).Return(nil)

		rr := s.do(t, router, http.MethodDelete, path, "")

		testutil.AssertStatus(t, rr, http.StatusNoContent)
	})

	s.T().Run("delete of a missing document is 404", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().Delete(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(dErrors.New(dErrors.CodeNotFound, "document not found"))

		rr := s.do(t, router, http.MethodDelete, path, "")

		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})
}
