package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"reachly/apperrors"
)

var validate = validator.New()

// ValidateStruct runs the struct's `validate` tags and folds failures into a
// single ValidationError with readable field messages.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var details []string
	for _, fe := range err.(validator.ValidationErrors) {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			details = append(details, field+" is required")
		case "gt":
			details = append(details, field+" must be greater than "+fe.Param())
		case "email":
			details = append(details, field+" must be a valid email")
		case "oneof":
			details = append(details, field+" must be one of "+fe.Param())
		default:
			details = append(details, field+" is invalid")
		}
	}
	return apperrors.NewValidation(strings.Join(details, "; "))
}
