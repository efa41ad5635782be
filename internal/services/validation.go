package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

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

// validateStruct runs tag validation and converts the first failure into a
// validation ServiceError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return validationError("invalid input")
	}
	fe := fieldErrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return validationError("%s is required", field)
	case "email":
		return validationError("%s must be a valid email address", field)
	case "oneof":
		return validationError("%s must be one of: %s", field, fe.Param())
	case "gt":
		return validationError("%s must be greater than %s", field, fe.Param())
	case "gte", "min":
		return validationError("%s must be at least %s", field, fe.Param())
	case "url", "http_url":
		return validationError("%s must be a valid URL", field)
	default:
		return validationError("%s is invalid", field)
	}
}
