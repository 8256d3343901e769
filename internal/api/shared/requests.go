package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps the request body read by DecodeObject.
const MaxBodyBytes = 1 << 20

// Global validator instance for reuse. Field names in validation errors are
// the JSON names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldTypeError reports a request field whose JSON value has the wrong type.
type FieldTypeError struct {
	Field string
	Want  string
}

// Error implements the error interface.
func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("field %q must be a %s", e.Field, e.Want)
}

// DecodeObject reads the request body as a JSON object and returns its
// members undecoded. A missing body, malformed JSON, or any JSON value that
// is not an object yields an empty map. A body larger than MaxBodyBytes is
// an error wrapping *http.MaxBytesError.
func DecodeObject(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if r.Body == nil {
		return fields, nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("request body exceeds %d bytes: %w", tooLarge.Limit, err)
		}
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return map[string]json.RawMessage{}, nil
	}
	return fields, nil
}

// StringField extracts a string member from fields decoded by DecodeObject.
// An absent member yields nil, an explicit null yields "", and any non-string
// value is a *FieldTypeError.
func StringField(fields map[string]json.RawMessage, name string) (*string, error) {
	raw, ok := fields[name]
	if !ok {
		return nil, nil
	}

	var value *string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, &FieldTypeError{Field: name, Want: "string"}
	}
	if value == nil {
		empty := ""
		return &empty, nil
	}
	return value, nil
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v any) error {
	// Check if the object implements the Validate interface
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return validate.Struct(v)
}
