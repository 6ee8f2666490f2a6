package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "cadastro/pkg/domain-errors"
)

func validUsuario() map[string]any {
	return map[string]any{
		"nome":     "Maria Silva",
		"idade":    30,
		"cargo":    "Analista",
		"telefone": "11912345678",
		"email":    "maria@x.com",
		"endereco": map[string]any{
			"cep":    "01001000",
			"rua":    "Praça da Sé",
			"numero": "100",
			"bairro": "Sé",
			"cidade": "São Paulo",
			"estado": "SP",
		},
		"createdAt": map[string]any{".sv": "timestamp"},
	}
}

func TestCheckCollection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"lowercase letters", "usuarios", false},
		{"empty", "", true},
		{"uppercase", "Usuarios", true},
		{"path traversal", "../users", true},
		{"digits", "users2", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCollection(tt.input)
			if tt.wantErr {
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckDocument(t *testing.T) {
	t.Run("accepts a complete registration", func(t *testing.T) {
		require.NoError(t, CheckDocument("usuarios", validUsuario()))
	})

	t.Run("rejects empty data in any collection", func(t *testing.T) {
		err := CheckDocument("notas", map[string]any{})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("collections without a schema accept any object", func(t *testing.T) {
		assert.NoError(t, CheckDocument("notas", map[string]any{"texto": 1}))
	})

	t.Run("reports nested failures by json path", func(t *testing.T) {
		doc := validUsuario()
		doc["idade"] = 17
		doc["endereco"].(map[string]any)["cep"] = "0100100"

		err := CheckDocument("usuarios", doc)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, err.Error(), "endereco.cep: postal code must have 8 digits")
		assert.Contains(t, err.Error(), "idade: age must be at least 18")
	})

	t.Run("email follows the form rule", func(t *testing.T) {
		for _, email := range []string{"a..b@x.com", "maria.silva@empresa.com.br", "x@y.z"} {
			doc := validUsuario()
			doc["email"] = email
			assert.NoError(t, CheckDocument("usuarios", doc), email)
		}
		for _, email := range []string{"maria@x", "maria x@y.com", "@x.com"} {
			doc := validUsuario()
			doc["email"] = email
			err := CheckDocument("usuarios", doc)
			require.Error(t, err, email)
			assert.Contains(t, err.Error(), "email: email is invalid")
		}
	})

	t.Run("age sent as text does not match the shape", func(t *testing.T) {
		doc := validUsuario()
		doc["idade"] = "30"

		err := CheckDocument("usuarios", doc)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestValidate_FallbackMessage(t *testing.T) {
	type shape struct {
		Code string `json:"code" validate:"required"`
	}
	failures := Validate(&shape{}, nil)
	assert.Equal(t, map[string][]string{"code": {"failed required"}}, failures)
}
