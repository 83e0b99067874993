package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
)

// validate is the shared validator instance. Field names in reported issues
// follow the json tag so issues line up with what the client actually sent.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// StructSchema validates input against a Go struct type using `validate`
// struct tags. The input is first decoded through JSON into T, then checked;
// the validated value returned is the decoded T.
type StructSchema[T any] struct{}

// Struct builds a StructSchema for T.
func Struct[T any]() *StructSchema[T] { return &StructSchema[T]{} }

func (s *StructSchema[T]) Validate(v any) (any, error) {
	var out T
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, &Error{Message: "input is not JSON-representable"}
		}
		dec := json.NewDecoder(bytes.NewReader(b))
		if err := dec.Decode(&out); err != nil {
			return nil, &Error{Message: fmt.Sprintf("input does not match expected shape: %v", err)}
		}
	}
	if err := validate.Struct(&out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, &Error{Message: err.Error()}
		}
		issues := make([]Issue, 0, len(verrs))
		for _, fe := range verrs {
			issues = append(issues, Issue{
				Path:    fe.Field(),
				Message: fmt.Sprintf("failed %q validation", fe.Tag()),
			})
		}
		return nil, &Error{Message: "validation failed", Issues: issues}
	}
	return out, nil
}

// JSONSchema reflects T into a JSON Schema document so registry-side
// collaborators (OpenAPI generation lives outside this module) can describe
// the route's expected shape.
func (s *StructSchema[T]) JSONSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{DoNotReference: true}
	var zero T
	return r.Reflect(&zero)
}
