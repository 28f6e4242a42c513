package services

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/studyhub-backend/internal/platform/apierr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput maps struct tag violations to a 400 naming the first bad field.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apierr.BadRequest("validation_error", errors.New(strings.ToLower(fe.Field())+" failed "+fe.Tag()))
	}
	return apierr.BadRequest("validation_error", err)
}
