package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/MfFischer/game-of-thrones-api/internal/models"
	appErrors "github.com/MfFischer/game-of-thrones-api/pkg/errors"
)

// CharacterRequest is the create and update payload. Fields are pointers so a
// missing value can be told apart from a zero value.
type CharacterRequest struct {
	Name  *string `json:"name" validate:"required,notblank,max=100"`
	House *string `json:"house" validate:"required,notblank,max=100"`
	Age   *int    `json:"age" validate:"required,gte=0"`
	Role  *string `json:"role" validate:"required,notblank,max=100"`
}

// Draft converts a validated request into repository input.
func (r CharacterRequest) Draft() models.CharacterDraft {
	var draft models.CharacterDraft
	if r.Name != nil {
		draft.Name = strings.TrimSpace(*r.Name)
	}
	if r.House != nil {
		draft.House = strings.TrimSpace(*r.House)
	}
	if r.Age != nil {
		draft.Age = *r.Age
	}
	if r.Role != nil {
		draft.Role = strings.TrimSpace(*r.Role)
	}
	return draft
}

// NewValidator returns a validator that reports JSON field names and knows the
// notblank rule.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	mustRegister(v, "notblank", validators.NotBlank)
	return v
}

// mustRegister panics when a rule cannot be registered. Request structs rely
// on every tag they name, so a validator without one is unusable.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

// validationError converts validator output into a field to reasons map.
func validationError(message string, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	details := make(map[string][]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = append(details[fe.Field()], describe(fe))
	}
	return appErrors.Validation(message, details)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "notblank":
		return "must not be blank"
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

// DecodeError turns a JSON binding failure into a validation error. Type
// mismatches are reported against the offending field.
func DecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return appErrors.Validation("invalid request body", map[string][]string{
			typeErr.Field: {"must be of type " + jsonKind(typeErr.Type)},
		})
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return appErrors.Validation("request body is not valid JSON", nil)
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body")
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	default:
		return t.Kind().String()
	}
}
