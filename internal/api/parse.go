package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	validator "github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names, not Go field names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseError is a response body that does not match the target shape.
type ParseError struct {
	// Target is the Go type being decoded, e.g. "[]api.FeedItem".
	Target string
	// Index is the array element that failed, or -1.
	Index int
	// Field is the JSON field at fault, when known.
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot decode %s", e.Target)
	if e.Index >= 0 {
		fmt.Fprintf(&b, " (element %d", e.Index)
		if e.Field != "" {
			fmt.Fprintf(&b, ", field %q", e.Field)
		}
		b.WriteString(")")
	} else if e.Field != "" {
		fmt.Fprintf(&b, " (field %q)", e.Field)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DecodeList decodes a JSON array into a list, keeping element order. An
// absent body is an empty list.
func DecodeList[T any](b Body) ([]T, error) {
	target := "[]" + typeName[T]()
	if b == nil {
		return []T{}, nil
	}
	raw := payload(b)
	if kind := jsonKind(raw); kind != "array" {
		return nil, &ParseError{Target: target, Index: -1, Err: fmt.Errorf("expected a JSON array, got %s", kind)}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, &ParseError{Target: target, Index: -1, Err: err}
	}
	out := make([]T, 0, len(elems))
	for i, elem := range elems {
		v, err := decodeValue[T](elem)
		if err != nil {
			err.Target = target
			err.Index = i
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// DecodeObject decodes a single JSON value. An absent body is an error.
func DecodeObject[T any](b Body) (T, error) {
	var zero T
	if b == nil {
		return zero, &ParseError{Target: typeName[T](), Index: -1, Err: errors.New("empty response body")}
	}
	raw := payload(b)
	if wantsObject[T]() {
		if kind := jsonKind(raw); kind != "object" {
			return zero, &ParseError{Target: typeName[T](), Index: -1, Err: fmt.Errorf("expected a JSON object, got %s", kind)}
		}
	}
	v, err := decodeValue[T](raw)
	if err != nil {
		return zero, err
	}
	return v, nil
}

// DecodeString returns a body as text. A JSON string body is unquoted.
func DecodeString(b Body) (string, error) {
	switch body := b.(type) {
	case nil:
		return "", nil
	case StringBody:
		return string(body), nil
	case JSONBody:
		var s string
		if err := json.Unmarshal(body, &s); err == nil {
			return s, nil
		}
		return string(body), nil
	default:
		return "", &ParseError{Target: "string", Index: -1, Err: fmt.Errorf("unsupported body %T", b)}
	}
}

// DecodeAck decodes a {"message": ...} acknowledgement; an absent body is an
// empty acknowledgement.
func DecodeAck(b Body) (Ack, error) {
	if b == nil {
		return Ack{}, nil
	}
	return DecodeObject[Ack](b)
}

func decodeValue[T any](raw []byte) (T, *ParseError) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		pe := &ParseError{Target: typeName[T](), Index: -1, Err: err}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			pe.Field = typeErr.Field
		}
		return v, pe
	}
	if err := validateValue(v); err != nil {
		pe := &ParseError{Target: typeName[T](), Index: -1, Err: err}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			pe.Field = fieldPath(fieldErrs[0].Namespace())
			pe.Err = fmt.Errorf("failed %q validation", fieldErrs[0].Tag())
		}
		return v, pe
	}
	return v, nil
}

func validateValue(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return validate.Struct(rv.Interface())
}

// fieldPath drops the struct name from a validator namespace:
// "FeedItem.title.text" -> "title.text".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func payload(b Body) []byte {
	switch body := b.(type) {
	case JSONBody:
		return body
	case StringBody:
		return []byte(body)
	default:
		return nil
	}
}

func jsonKind(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "nothing"
	}
	switch trimmed[0] {
	case '[':
		return "array"
	case '{':
		return "object"
	case '"':
		return "string"
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	default:
		return "number"
	}
}

func wantsObject[T any]() bool {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct || t.Kind() == reflect.Map
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
