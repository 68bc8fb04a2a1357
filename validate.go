package calldep

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Validator is the capability used to validate and coerce every resolved
// parameter value against the parameter's declared type. The engine treats a
// validation failure as opaque and re-raises it unchanged, so callers can
// inspect whatever error type their validator produces.
type Validator interface {
	// Validate checks value against the declared type and returns the value
	// to use, possibly converted. A nil declared type means the parameter
	// declared no type and should pass through untouched.
	Validate(declared reflect.Type, value any) (any, error)
}

// StructValidator is a Validator that coerces raw values into the declared
// type and applies struct tag validation. Raw maps decode into struct types
// field by field, and scalar values convert weakly (for example the string
// "42" satisfies an int parameter). After decoding, struct types are checked
// against their `validate` tags.
//
// Use it by composing a context with WithValidator(NewStructValidator()).
type StructValidator struct {
	check *validator.Validate
}

// NewStructValidator creates a StructValidator with a fresh validator
// instance. The instance caches struct metadata internally and is safe to
// share across contexts.
func NewStructValidator() *StructValidator {
	return &StructValidator{
		check: validator.New(),
	}
}

// Validate implements Validator.
func (s *StructValidator) Validate(declared reflect.Type, value any) (any, error) {
	if declared == nil {
		return value, nil
	}

	if value == nil || reflect.TypeOf(value) != declared {
		out := reflect.New(declared)
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           out.Interface(),
		})
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(value); err != nil {
			return nil, err
		}
		value = out.Elem().Interface()
	}

	structType := declared
	for structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}
	if structType.Kind() == reflect.Struct {
		if err := s.check.Struct(value); err != nil {
			return nil, err
		}
	}
	return value, nil
}
