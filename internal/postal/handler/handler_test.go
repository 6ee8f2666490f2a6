package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"cadastro/internal/postal"
	"cadastro/internal/postal/mocks"
	dErrors "cadastro/pkg/domain-errors"
	"cadastro/pkg/testutil"
)

func newRouter(t *testing.T) (*mocks.MockLookuper, chi.Router) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)
	router := chi.NewRouter()
	New(lookup, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(router)
	return lookup, router
}

func TestHandleLookup(t *testing.T) {
	t.Run("found address uses ViaCEP field names", func(t *testing.T) {
		lookup, router := newRouter(t)
		lookup.EXPECT().Lookup(gomock.Any(), "01001000").Return(&postal.Address{
			CEP: "01001000", Street: "Praça da Sé", Neighborhood: "Sé", City: "São Paulo", State: "SP",
		}, nil)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/cep/01001000"))

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.JSONEq(t, `{"cep":"01001000","logradouro":"Praça da Sé","complemento":"","bairro":"Sé","localidade":"São Paulo","uf":"SP"}`, rr.Body.String())
	})

	t.Run("unknown cep answers erro true", func(t *testing.T) {
		lookup, router := newRouter(t)
		lookup.EXPECT().Lookup(gomock.Any(), "99999999").Return(nil, postal.ErrNotFound)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/cep/99999999"))

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.JSONEq(t, `{"erro":true}`, rr.Body.String())
	})

	t.Run("invalid cep is 400", func(t *testing.T) {
		lookup, router := newRouter(t)
		lookup.EXPECT().Lookup(gomock.Any(), "123").
			Return(nil, postal.NewError(postal.CategoryInvalidInput, "cep must have 8 digits", nil))

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/cep/123"))

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
		assert.Empty(t, rr.Header().Get("Retry-After"))
	})

	t.Run("upstream outage is 503", func(t *testing.T) {
		lookup, router := newRouter(t)
		lookup.EXPECT().Lookup(gomock.Any(), "01001000").
			Return(nil, postal.NewError(postal.CategoryOutage, "cep service unreachable", nil))

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/cep/01001000"))

		testutil.AssertStatusAndError(t, rr, http.StatusServiceUnavailable, string(dErrors.CodeUnavailable))
		assert.Equal(t, "5", rr.Header().Get("Retry-After"))
	})

	t.Run("malformed upstream body is 503 without a retry hint", func(t *testing.T) {
		lookup, router := newRouter(t)
		lookup.EXPECT().Lookup(gomock.Any(), "01001000").
			Return(nil, postal.NewError(postal.CategoryBadData, "invalid cep response", nil))

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/cep/01001000"))

		testutil.AssertStatusAndError(t, rr, http.StatusServiceUnavailable, string(dErrors.CodeUnavailable))
		assert.Empty(t, rr.Header().Get("Retry-After"))
	})
}
