package serverutils

import (
	"fmt"
	"strings"

	"ai-research-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and converts failures into the
// typed validation error the error handler maps to 400.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return apperror.Validation(err.Error(), nil)
		}

		fields := make(map[string]string, len(validationErrors))
		for _, fe := range validationErrors {
			fields[strings.ToLower(fe.Field())] = fmt.Sprintf("failed on '%s' rule", fe.Tag())
		}
		return apperror.Validation("request validation failed", fields)
	}
	return nil
}
