// internal/app/system/inputval/inputval.go
//
// Package inputval validates request input structs declared with
// `validate:"..."` and `label:"..."` struct tags.
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]; name != "" && name != "-" {
				return name
			}
			return f.Name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// FieldError describes one failing field.
type FieldError struct {
	Field   string // json name
	Label   string // human label
	Message string
}

// Result holds all field errors for one input.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether validation failed.
func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first error message, or "".
func (r Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// FirstField returns the first failing field, or the zero value.
func (r Result) FirstField() FieldError {
	if len(r.Errors) == 0 {
		return FieldError{}
	}
	return r.Errors[0]
}

// All returns every error message.
func (r Result) All() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Message
	}
	return out
}

// Validate runs struct-tag validation on input. Field order follows the
// struct declaration, so First reports the first failing field.
func Validate(input any) Result {
	err := instance().Struct(input)
	if err == nil {
		return Result{}
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Result{Errors: []FieldError{{Message: err.Error()}}}
	}

	t := reflect.TypeOf(input)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	res := Result{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		// dive errors name the element, e.g. Interests[2]
		structField := stripIndex(fe.StructField())
		label := structField
		if sf, ok := t.FieldByName(structField); ok {
			if l := sf.Tag.Get("label"); l != "" {
				label = l
			}
		}
		res.Errors = append(res.Errors, FieldError{
			Field:   stripIndex(fe.Field()),
			Label:   label,
			Message: message(label, fe),
		})
	}
	return res
}

func message(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("At least one %s is required", strings.ToLower(singular(label)))
		}
		return fmt.Sprintf("%s is required", label)
	case "min":
		if fe.Kind() == reflect.Slice {
			if fe.Param() == "1" {
				return fmt.Sprintf("At least one %s is required", strings.ToLower(singular(label)))
			}
			return fmt.Sprintf("%s must have at least %s items", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s items", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "json":
		return fmt.Sprintf("%s must be valid JSON", label)
	case "objectid":
		return fmt.Sprintf("%s contains an invalid id", label)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	case "dive":
		return fmt.Sprintf("%s is invalid", label)
	}
	return fmt.Sprintf("%s is invalid", label)
}

func stripIndex(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}

func singular(s string) string {
	return strings.TrimSuffix(s, "s")
}
