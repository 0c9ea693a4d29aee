package utils

import "github.com/go-playground/validator/v10"

// Validate is the shared struct validator used outside of gin binding,
// e.g. for admin rule payloads.
var Validate *validator.Validate

func InitValidator() {
	Validate = validator.New(validator.WithRequiredStructEnabled())
}

// GetValidator returns the shared validator.
func GetValidator() *validator.Validate {
	if Validate == nil {
		InitValidator()
	}
	return Validate
}
