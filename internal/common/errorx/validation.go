package errorx

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

// FromBinding converts a request binding or validator error into a ValidationError
// listing every failed field. Any other error becomes a single violation.
func FromBinding(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return Invalid("malformed request: " + err.Error())
	}
	var v Violations
	for _, fe := range ve {
		v.Add("%s", describe(fe))
	}
	sort.Strings(v)
	return v.Err()
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date in the format %s", field, fe.Param())
	}
	return fmt.Sprintf("%s failed the %s rule", field, fe.Tag())
}
