package validator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// GetValidator returns the singleton instance of the validator
func GetValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

type FieldError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// Struct validates s and flattens validation failures into FieldErrors. A
// non-validation error (e.g. s is not a struct) is returned as is.
func Struct(s any) ([]FieldError, error) {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil, nil
	}
	var validErrs validator.ValidationErrors
	if !errors.As(err, &validErrs) {
		return nil, err
	}
	details := make([]FieldError, 0, len(validErrs))
	for _, vErr := range validErrs {
		details = append(details, FieldError{
			Field: vErr.Field(),
			Issue: fmt.Sprintf("failed on tag '%s' with param '%s'", vErr.Tag(), vErr.Param()),
		})
	}
	return details, nil
}
