// Package validation checks collection names and, for collections with a
// known shape, the documents written to them.
package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/asaskevich/govalidator"
	"github.com/go-playground/validator/v10"

	dErrors "cadastro/pkg/domain-errors"
)

// FormEmailPattern is the email rule of the registration form.
const FormEmailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`

var (
	validatorInstance *validator.Validate
	validatorOnce     sync.Once
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInstance = validator.New()

		// report fields by their json names so messages match the payload keys
		validatorInstance.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// same rule as the registration form, so what it accepts is stored
		_ = validatorInstance.RegisterValidation("formemail", func(fl validator.FieldLevel) bool {
			return govalidator.Matches(fl.Field().String(), FormEmailPattern)
		})
	})

	return validatorInstance
}

// Validate runs struct validation on input and returns failures keyed by
// the dotted json path (e.g. "endereco.cep"). Messages are looked up as
// "<path>.<tag>"; a missing entry falls back to "failed <tag>".
func Validate(input any, messages map[string]string) map[string][]string {
	err := getValidator().Struct(input)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string][]string{"": {err.Error()}}
	}

	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if i := strings.Index(path, "."); i >= 0 {
			path = path[i+1:]
		}
		msg, ok := messages[path+"."+fe.Tag()]
		if !ok {
			msg = "failed " + fe.Tag()
		}
		out[path] = append(out[path], msg)
	}
	return out
}

// CheckCollection rejects names that cannot be used as a collection.
func CheckCollection(name string) error {
	if err := getValidator().Var(name, "required,max=64,lowercase,alpha"); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid collection name")
	}
	return nil
}

// schemas maps collections to the shape their documents must satisfy.
// Collections without an entry accept any non-empty object.
var schemas = map[string]schema{
	"usuarios": {newShape: func() any { return &Usuario{} }, messages: usuarioMessages},
}

type schema struct {
	newShape func() any
	messages map[string]string
}

// CheckDocument validates data against the collection's schema, if any.
func CheckDocument(collection string, data map[string]any) error {
	if len(data) == 0 {
		return dErrors.New(dErrors.CodeValidation, "document data is required")
	}
	sch, ok := schemas[collection]
	if !ok {
		return nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "document is not valid JSON")
	}
	shape := sch.newShape()
	if err := json.Unmarshal(raw, shape); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "document does not match the collection shape")
	}

	failures := Validate(shape, sch.messages)
	if len(failures) == 0 {
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, summarize(failures))
}

func summarize(failures map[string][]string) string {
	keys := make([]string, 0, len(failures))
	for k := range failures {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(failures[k], ", ")))
	}
	return strings.Join(parts, "; ")
}
