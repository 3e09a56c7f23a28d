package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is matched by every validation failure.
var ErrInvalid = errors.New("invalid input")

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

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects every failed field of a form.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Validate checks v's validate tags, then its own Validate method if it has
// one. Field errors come back as a *ValidationError.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return translate(err)
	}
	if sv, ok := v.(interface{ Validate() error }); ok {
		return sv.Validate()
	}
	return nil
}

// Check returns a single-value validator for form inputs, e.g.
// Check("title", "required,min=3").
func Check(label, tag string) func(string) error {
	return func(s string) error {
		err := validate.Var(strings.TrimSpace(s), tag)
		if err == nil {
			return nil
		}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%s %s", label, message(verrs[0]))
		}
		return err
	}
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be " + fe.Param() + " or more"
	case "lte":
		return "must be " + fe.Param() + " or less"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "file":
		return "must be an existing file"
	case "excludesall":
		return "contains characters that are not allowed"
	case "number", "numeric":
		return "must be a number"
	}
	return "is invalid (" + fe.Tag() + ")"
}

// Validate checks the kind-specific detail, which the tag pass cannot reach
// through the interface.
func (in DeliveryItemInput) Validate() error {
	if in.Detail == nil {
		return &ValidationError{Fields: []FieldError{{Field: "detail", Message: "is required"}}}
	}
	if err := validate.Struct(in.Detail); err != nil {
		return translate(err)
	}
	return nil
}

func (in DeliveryInput) Validate() error {
	for i, item := range in.Items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i+1, err)
		}
	}
	return nil
}
