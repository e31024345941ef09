package utils

import (
	"fmt"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func InitValidator() {
	if Validate != nil {
		return
	}
	Validate = validator.New()
	_ = Validate.RegisterValidation("mailformat", func(fl validator.FieldLevel) bool {
		return checkmail.ValidateFormat(fl.Field().String()) == nil
	})
}

// FormatValidationErrors turns validator output into a single readable message.
func FormatValidationErrors(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var msgs []string
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required", "required_without":
			msgs = append(msgs, field+" is required")
		case "min", "gt", "gte":
			msgs = append(msgs, field+" must be at least "+e.Param())
		case "max", "lte":
			msgs = append(msgs, field+" must be at most "+e.Param())
		case "email", "mailformat":
			msgs = append(msgs, field+" must be a valid email")
		case "oneof":
			msgs = append(msgs, field+" must be one of "+e.Param())
		case "excluded_with":
			msgs = append(msgs, field+" cannot be combined with "+strings.ToLower(e.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return fmt.Errorf("%s", strings.Join(msgs, ", "))
}
