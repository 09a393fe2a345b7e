package dto

import (
	"github.com/go-playground/validator/v10"

	"github.com/Zachary2562/recordables-ticketquest/pkg/util"
)

var validate = validator.New()

// Validate runs struct tag validation and maps failures to the standard
// validation error shape.
func Validate(payload any) error {
	if err := validate.Struct(payload); err != nil {
		details := map[string]any{}
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				details[fe.Field()] = fe.Tag()
			}
		}
		return util.NewValidationError("invalid payload", details)
	}
	return nil
}
