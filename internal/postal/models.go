package postal

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -source=models.go -destination=mocks/mocks.go -package=mocks

// Lookuper resolves a CEP to an address.
type Lookuper interface {
	Lookup(ctx context.Context, cep string) (*Address, error)
}

// Address uses the ViaCEP field names so the proxy can pass it through
// unchanged.
type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Complement   string `json:"complemento"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
}

// Usable reports whether the address carries enough to fill a form.
func (a *Address) Usable() bool {
	return a != nil && strings.TrimSpace(a.City) != "" && strings.TrimSpace(a.State) != ""
}

// viaCEPResponse is the upstream payload. "erro" has been seen both as a
// boolean and as the string "true".
type viaCEPResponse struct {
	Address
	Erro flexBool `json:"erro"`
}

type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "true":
		*b = true
	case "false", "", "null":
		*b = false
	default:
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*b = flexBool(v)
	}
	return nil
}

// NotFoundResponse is what the proxy answers for unknown CEPs.
type NotFoundResponse struct {
	Erro bool `json:"erro"`
}

// Normalize strips everything but digits.
func Normalize(cep string) string {
	var b strings.Builder
	b.Grow(len(cep))
	for _, r := range cep {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether cep is exactly eight digits.
func Valid(cep string) bool {
	return len(cep) == 8 && govalidator.IsNumeric(cep)
}
