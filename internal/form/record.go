package form

import (
	"strconv"
	"strings"

	"cadastro/internal/records/models"
)

// Collection is where registrations are stored.
const Collection = "usuarios"

// Field names double as the stored document keys.
type Field string

const (
	FieldNome        Field = "nome"
	FieldIdade       Field = "idade"
	FieldCargo       Field = "cargo"
	FieldTelefone    Field = "telefone"
	FieldEmail       Field = "email"
	FieldCEP         Field = "cep"
	FieldRua         Field = "rua"
	FieldBairro      Field = "bairro"
	FieldCidade      Field = "cidade"
	FieldEstado      Field = "estado"
	FieldNumero      Field = "numero"
	FieldComplemento Field = "complemento"
)

// RequiredFields are checked by ValidateForm, in display order.
var RequiredFields = []Field{
	FieldNome, FieldIdade, FieldCargo, FieldTelefone, FieldEmail,
	FieldCEP, FieldNumero, FieldCidade, FieldEstado,
}

// Record holds the raw text of every form field.
type Record struct {
	Nome        string
	Idade       string
	Cargo       string
	Telefone    string
	Email       string
	CEP         string
	Rua         string
	Bairro      string
	Cidade      string
	Estado      string
	Numero      string
	Complemento string
}

// Get returns the value of f, or "" for an unknown field.
func (r Record) Get(f Field) string {
	if p := r.ptr(f); p != nil {
		return *p
	}
	return ""
}

func (r *Record) set(f Field, v string) {
	if p := r.ptr(f); p != nil {
		*p = v
	}
}

func (r *Record) ptr(f Field) *string {
	switch f {
	case FieldNome:
		return &r.Nome
	case FieldIdade:
		return &r.Idade
	case FieldCargo:
		return &r.Cargo
	case FieldTelefone:
		return &r.Telefone
	case FieldEmail:
		return &r.Email
	case FieldCEP:
		return &r.CEP
	case FieldRua:
		return &r.Rua
	case FieldBairro:
		return &r.Bairro
	case FieldCidade:
		return &r.Cidade
	case FieldEstado:
		return &r.Estado
	case FieldNumero:
		return &r.Numero
	case FieldComplemento:
		return &r.Complemento
	}
	return nil
}

func (r Record) hasAddress() bool {
	return r.Rua != "" && r.Bairro != "" && r.Numero != "" && r.Cidade != "" && r.Estado != ""
}

// Endereco is the nested address of a stored registration.
type Endereco struct {
	CEP         string `json:"cep"`
	Rua         string `json:"rua"`
	Numero      string `json:"numero"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Cidade      string `json:"cidade"`
	Estado      string `json:"estado"`
}

// Payload is the document written to Collection.
type Payload struct {
	Nome      string            `json:"nome"`
	Idade     int               `json:"idade"`
	Cargo     string            `json:"cargo"`
	Telefone  string            `json:"telefone"`
	Email     string            `json:"email"`
	Endereco  Endereco          `json:"endereco"`
	CreatedAt *models.Timestamp `json:"createdAt,omitempty"`
	UpdatedAt *models.Timestamp `json:"updatedAt,omitempty"`
}

// buildPayload expects a record that already passed ValidateForm.
func buildPayload(r Record, editing bool) Payload {
	idade, _ := strconv.Atoi(strings.TrimSpace(r.Idade))
	ts := models.ServerTimestamp()
	p := Payload{
		Nome:     strings.TrimSpace(r.Nome),
		Idade:    idade,
		Cargo:    strings.TrimSpace(r.Cargo),
		Telefone: OnlyDigits(r.Telefone),
		Email:    strings.TrimSpace(r.Email),
		Endereco: Endereco{
			CEP:         r.CEP,
			Rua:         r.Rua,
			Numero:      r.Numero,
			Complemento: r.Complemento,
			Bairro:      r.Bairro,
			Cidade:      r.Cidade,
			Estado:      r.Estado,
		},
	}
	if editing {
		p.UpdatedAt = &ts
	} else {
		p.CreatedAt = &ts
	}
	return p
}

// RecordFromDocument rebuilds form text from a stored registration so it
// can be edited. Unknown or mistyped keys are left empty.
func RecordFromDocument(data map[string]any) Record {
	r := Record{
		Nome:     text(data["nome"]),
		Idade:    text(data["idade"]),
		Cargo:    text(data["cargo"]),
		Telefone: text(data["telefone"]),
		Email:    text(data["email"]),
	}
	if addr, ok := data["endereco"].(map[string]any); ok {
		r.CEP = text(addr["cep"])
		r.Rua = text(addr["rua"])
		r.Numero = text(addr["numero"])
		r.Complemento = text(addr["complemento"])
		r.Bairro = text(addr["bairro"])
		r.Cidade = text(addr["cidade"])
		r.Estado = text(addr["estado"])
	}
	return r
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	}
	return ""
}
