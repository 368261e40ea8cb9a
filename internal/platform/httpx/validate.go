package httpx

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator is the shared request validator instance.
var Validator = validator.New()

// ValidateStruct runs struct validation and folds field errors into a single
// ErrValidation-wrapped error suitable for RespondError.
func ValidateStruct(v any) error {
	if err := Validator.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		fields := make([]string, 0)
		if ok := isValidationErrors(err, &fieldErrs); ok {
			for _, fe := range fieldErrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrValidation, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func isValidationErrors(err error, target *validator.ValidationErrors) bool {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = fieldErrs
	}
	return ok
}
