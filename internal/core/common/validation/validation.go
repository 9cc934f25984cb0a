package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/frahmantamala/bodega-inventory/internal"
	"github.com/frahmantamala/bodega-inventory/pkg/permission"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the bodega tags registered:
// username and role.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return permission.ValidRole(permission.Role(fl.Field().String()))
		})
		instance = v
	})
	return instance
}

func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// Struct validates a DTO and converts failures into a VALIDATION_FAILED AppError
// listing each offending field.
func Struct(v interface{}) *apperrors.AppError {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error(), apperrors.ErrCodeValidationFailed)
	}

	out := make([]apperrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apperrors.ValidationError{
			Field:   fe.Field(),
			Message: message(fe),
			Code:    string(code(fe)),
		})
	}

	return apperrors.NewValidationError("Validation failed", apperrors.ErrCodeValidationFailed).
		WithDetails(apperrors.ValidationErrors{Errors: out})
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must not exceed %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "username":
		return "username must be 3-20 letters, digits or underscores"
	case "role":
		return "role must be one of user, admin, super_admin"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func code(fe validator.FieldError) apperrors.ErrorCode {
	switch fe.Tag() {
	case "username":
		return apperrors.ErrCodeInvalidUsername
	case "role":
		return apperrors.ErrCodeInvalidRole
	}
	if fe.Field() == "quantity" || fe.Field() == "minimum_stock" {
		return apperrors.ErrCodeInvalidQuantity
	}
	return apperrors.ErrCodeValidationFailed
}
