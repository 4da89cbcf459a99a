package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxJobNameLength = 255

func jobNameValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	trimmed := strings.TrimSpace(val)
	return trimmed != "" && len(trimmed) <= maxJobNameLength
}
