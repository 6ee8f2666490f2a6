package postal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadastro/internal/platform/metrics"
)

func viaCEPServer(t *testing.T, status int, body string) (*httptest.Server, *string) {
	t.Helper()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &gotPath
}

const seBody = `{
	"cep": "01001-000",
	"logradouro": "Praça da Sé",
	"complemento": "lado ímpar",
	"bairro": "Sé",
	"localidade": "São Paulo",
	"uf": "SP",
	"ibge": "3550308"
}`

func TestClient_Lookup(t *testing.T) {
	t.Run("queries the entered cep and parses the address", func(t *testing.T) {
		srv, path := viaCEPServer(t, http.StatusOK, seBody)

		addr, err := NewClient(srv.URL).Lookup(context.Background(), "01001-000")

		require.NoError(t, err)
		assert.Equal(t, "/ws/01001000/json/", *path)
		assert.Equal(t, &Address{
			CEP: "01001000", Street: "Praça da Sé", Complement: "lado ímpar",
			Neighborhood: "Sé", City: "São Paulo", State: "SP",
		}, addr)
	})

	t.Run("a different cep hits a different path", func(t *testing.T) {
		srv, path := viaCEPServer(t, http.StatusOK, seBody)

		_, err := NewClient(srv.URL).Lookup(context.Background(), "25812340")

		require.NoError(t, err)
		assert.Equal(t, "/ws/25812340/json/", *path)
	})

	t.Run("proxy path template", func(t *testing.T) {
		srv, path := viaCEPServer(t, http.StatusOK, seBody)

		_, err := NewClient(srv.URL+"/", WithPath(ProxyPath)).Lookup(context.Background(), "01001000")

		require.NoError(t, err)
		assert.Equal(t, "/v1/cep/01001000", *path)
	})

	t.Run("invalid cep never reaches the network", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("unexpected request")
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Lookup(context.Background(), "1234567")

		assert.Equal(t, CategoryInvalidInput, GetCategory(err))
		assert.False(t, IsRetryable(err))
	})
}

func TestClient_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"erro as boolean", http.StatusOK, `{"erro": true}`},
		{"erro as string", http.StatusOK, `{"erro": "true"}`},
		{"no city or state", http.StatusOK, `{"cep":"01001-000","logradouro":"","localidade":"","uf":""}`},
		{"404", http.StatusNotFound, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := viaCEPServer(t, tt.status, tt.body)

			addr, err := NewClient(srv.URL).Lookup(context.Background(), "99999999")

			assert.Nil(t, addr)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		category  Category
		retryable bool
	}{
		{"malformed json", http.StatusOK, `{bad`, CategoryBadData, false},
		{"server error", http.StatusBadGateway, ``, CategoryOutage, true},
		{"rate limited", http.StatusTooManyRequests, ``, CategoryRateLimited, true},
		{"rejected cep", http.StatusBadRequest, `<html>`, CategoryInvalidInput, false},
		{"unexpected status", http.StatusTeapot, ``, CategoryBadData, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := viaCEPServer(t, tt.status, tt.body)

			_, err := NewClient(srv.URL).Lookup(context.Background(), "01001000")

			require.Error(t, err)
			assert.Equal(t, tt.category, GetCategory(err))
			assert.Equal(t, tt.retryable, IsRetryable(err))
		})
	}

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, WithTimeout(50*time.Millisecond)).Lookup(context.Background(), "01001000")

		assert.Equal(t, CategoryTimeout, GetCategory(err))
		assert.True(t, IsRetryable(err))
	})

	t.Run("unreachable host", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewClient(url).Lookup(context.Background(), "01001000")

		assert.Equal(t, CategoryOutage, GetCategory(err))
	})
}

func TestClient_RecordsOutcomes(t *testing.T) {
	srv, _ := viaCEPServer(t, http.StatusOK, `{"erro": true}`)
	m := metrics.New(prometheus.NewRegistry())

	_, err := NewClient(srv.URL, WithMetrics(m)).Lookup(context.Background(), "99999999")

	require.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, 1, promtest.CollectAndCount(m.PostalLookups))
}

func TestError_Message(t *testing.T) {
	err := NewError(CategoryOutage, "cep service unreachable", errors.New("connection refused"))
	assert.Equal(t, "cep lookup [provider_outage]: cep service unreachable: connection refused", err.Error())
	assert.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
}

func TestValidAndNormalize(t *testing.T) {
	assert.True(t, Valid("01001000"))
	assert.False(t, Valid("1234567"))
	assert.False(t, Valid("1234567a"))
	assert.False(t, Valid("01001-000"))
	assert.Equal(t, "01001000", Normalize("01001-000"))
}
