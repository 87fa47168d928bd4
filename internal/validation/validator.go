// Package validation holds the shared go-playground validator instance and
// converts its errors into a flat list the HTTP layer can report.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// UserIDPattern is the accepted shape of a user id. It doubles as a
// partition file name, so no path separators or dots.
var UserIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// FieldError describes one failed constraint.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Message
}

// RequestValidationError is returned by ValidateStruct.
type RequestValidationError struct {
	Fields []FieldError
}

func (e *RequestValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// GetValidator returns the singleton validator.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("userid", func(fl validator.FieldLevel) bool {
			return UserIDPattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("feature", func(fl validator.FieldLevel) bool {
			return domain.IsFeature(fl.Field().String())
		})
	})
	return validate
}

// ValidateStruct runs struct tag validation on s. The returned error is a
// *RequestValidationError when any constraint fails.
func ValidateStruct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation: %w", err)
	}

	out := &RequestValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: message(fe),
		})
	}
	return out
}

// ValidUserID reports whether id can be used as a partition key.
func ValidUserID(id string) bool {
	return UserIDPattern.MatchString(id)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "userid":
		return fmt.Sprintf("%s must match %s", fe.Field(), UserIDPattern.String())
	case "feature":
		return fmt.Sprintf("%s is not an audio feature", fe.Field())
	case "gtfield", "gtefield":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
