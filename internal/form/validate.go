package form

import (
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
	"golang.org/x/text/unicode/norm"
)

const emailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`

const (
	msgNomeRequired     = "Nome é obrigatório"
	msgNomeMin          = "Nome deve ter pelo menos 3 caracteres"
	msgNomeLetters      = "Nome deve conter apenas letras"
	msgIdadeRequired    = "Idade é obrigatória"
	msgIdadeNaN         = "Idade deve ser um número"
	msgIdadeMin         = "Idade mínima é 18 anos"
	msgIdadeMax         = "Idade inválida"
	msgCargoRequired    = "Cargo é obrigatório"
	msgCargoMin         = "Cargo deve ter pelo menos 2 caracteres"
	msgTelefoneRequired = "Telefone é obrigatório"
	msgTelefoneDigits   = "Telefone deve ter entre 10 e 11 dígitos"
	msgEmailRequired    = "Email é obrigatório"
	msgEmailInvalid     = "Email inválido"
	msgCEPRequired      = "CEP é obrigatório"
	msgCEPLength        = "CEP deve ter 8 dígitos"
	msgCEPDigits        = "CEP deve conter apenas números"
	msgNumeroRequired   = "Número é obrigatório"
	msgNumeroFormat     = "Número deve conter apenas dígitos ou S/N"
	msgCidadeRequired   = "Cidade é obrigatória"
	msgEstadoRequired   = "Estado é obrigatório"
	msgEstadoUF         = "Use a sigla do estado (2 letras)"
)

// ValidateField returns the message for value in field, or "" when valid.
// Fields without rules are always valid.
func ValidateField(field Field, value string) string {
	trimmed := strings.TrimSpace(value)
	switch field {
	case FieldNome:
		switch {
		case trimmed == "":
			return msgNomeRequired
		case utf8.RuneCountInString(trimmed) < 3:
			return msgNomeMin
		// composed form so "e" + combining acute counts as one letter
		case !govalidator.IsUTFLetter(norm.NFC.String(strings.ReplaceAll(value, " ", ""))):
			return msgNomeLetters
		}
	case FieldIdade:
		if trimmed == "" {
			return msgIdadeRequired
		}
		digits := stripLeadingZeros(trimmed)
		if !govalidator.IsInt(digits) {
			return msgIdadeNaN
		}
		age, err := govalidator.ToInt(digits)
		switch {
		case err != nil && strings.HasPrefix(digits, "-"):
			return msgIdadeMin
		case err != nil:
			return msgIdadeMax
		case age < 18:
			return msgIdadeMin
		case age > 120:
			return msgIdadeMax
		}
	case FieldCargo:
		switch {
		case trimmed == "":
			return msgCargoRequired
		case utf8.RuneCountInString(trimmed) < 2:
			return msgCargoMin
		}
	case FieldTelefone:
		if trimmed == "" {
			return msgTelefoneRequired
		}
		if n := len(OnlyDigits(value)); n < 10 || n > 11 {
			return msgTelefoneDigits
		}
	case FieldEmail:
		switch {
		case trimmed == "":
			return msgEmailRequired
		case !govalidator.Matches(value, emailPattern):
			return msgEmailInvalid
		}
	case FieldCEP:
		switch {
		case value == "":
			return msgCEPRequired
		case utf8.RuneCountInString(value) != 8:
			return msgCEPLength
		case !govalidator.IsNumeric(value):
			return msgCEPDigits
		}
	case FieldNumero:
		switch {
		case trimmed == "":
			return msgNumeroRequired
		case value != "S/N" && !govalidator.IsNumeric(value):
			return msgNumeroFormat
		}
	case FieldCidade:
		if trimmed == "" {
			return msgCidadeRequired
		}
	case FieldEstado:
		switch {
		case trimmed == "":
			return msgEstadoRequired
		case utf8.RuneCountInString(trimmed) != 2 || !govalidator.IsUTFLetter(trimmed):
			return msgEstadoUF
		}
	}
	return ""
}

// stripLeadingZeros turns "030" into "30"; signed input is left alone.
func stripLeadingZeros(s string) string {
	if s == "" || s[0] < '0' || s[0] > '9' {
		return s
	}
	if out := strings.TrimLeft(s, "0"); out != "" {
		return out
	}
	return "0"
}

// ValidateRecord runs every required-field rule against r.
func ValidateRecord(r Record) map[Field]string {
	errs := make(map[Field]string, len(RequiredFields))
	for _, f := range RequiredFields {
		errs[f] = ValidateField(f, r.Get(f))
	}
	return errs
}

// OnlyDigits drops every non-digit rune.
func OnlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// FormatPhone renders digits as (XX) XXXXX-XXXX, tolerating partial input.
func FormatPhone(phone string) string {
	d := OnlyDigits(phone)
	switch {
	case d == "":
		return ""
	case len(d) <= 2:
		return "(" + d
	case len(d) <= 7:
		return "(" + d[:2] + ") " + d[2:]
	}
	if len(d) > 11 {
		d = d[:11]
	}
	return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
}

// normalizeInput is applied by UpdateField before storing a value.
func normalizeInput(field Field, value string) string {
	switch field {
	case FieldTelefone, FieldCEP:
		return OnlyDigits(value)
	}
	return value
}
