package validation

// Usuario is the shape of documents in the usuarios collection.
type Usuario struct {
	Nome     string   `json:"nome" validate:"required,min=3"`
	Idade    int      `json:"idade" validate:"gte=18,lte=120"`
	Cargo    string   `json:"cargo" validate:"required,min=2"`
	Telefone string   `json:"telefone" validate:"required,numeric,min=10,max=11"`
	Email    string   `json:"email" validate:"required,formemail"`
	Endereco Endereco `json:"endereco"`
}

type Endereco struct {
	CEP         string `json:"cep" validate:"required,numeric,len=8"`
	Rua         string `json:"rua" validate:"required"`
	Numero      string `json:"numero" validate:"required"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro" validate:"required"`
	Cidade      string `json:"cidade" validate:"required"`
	Estado      string `json:"estado" validate:"required,len=2"`
}

var usuarioMessages = map[string]string{
	"nome.required":            "name is required",
	"nome.min":                 "name must have at least 3 characters",
	"idade.gte":                "age must be at least 18",
	"idade.lte":                "age must be at most 120",
	"cargo.required":           "role is required",
	"cargo.min":                "role must have at least 2 characters",
	"telefone.required":        "phone is required",
	"telefone.numeric":         "phone must contain only digits",
	"telefone.min":             "phone must have 10 or 11 digits",
	"telefone.max":             "phone must have 10 or 11 digits",
	"email.required":           "email is required",
	"email.formemail":          "email is invalid",
	"endereco.cep.required":    "postal code is required",
	"endereco.cep.numeric":     "postal code must contain only digits",
	"endereco.cep.len":         "postal code must have 8 digits",
	"endereco.rua.required":    "street is required",
	"endereco.numero.required": "number is required",
	"endereco.bairro.required": "neighborhood is required",
	"endereco.cidade.required": "city is required",
	"endereco.estado.required": "state is required",
	"endereco.estado.len":      "state must be a 2-letter code",
}
