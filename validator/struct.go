package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// errorMessages maps validation tags to friendly messages.
var errorMessages = map[string]string{
	"required":    "The field '%s' is required.",
	"required_if": "The field '%s' is required.",
	"min":         "The field '%s' must be at least %s.",
	"max":         "The field '%s' must be no more than %s.",
	"lte":         "The field '%s' must be less than or equal to %s.",
	"gte":         "The field '%s' must be greater than or equal to %s.",
	"gt":          "The field '%s' must be greater than %s.",
	"lt":          "The field '%s' must be less than %s.",
	"oneof":       "The field '%s' must be one of [%s].",
}

// parseMessage constructs a friendly error message based on the validation tag.
func parseMessage(name string, e validator.FieldError) string {
	if msg, exists := errorMessages[e.Tag()]; exists {
		switch strings.Count(msg, "%s") {
		case 1:
			return fmt.Sprintf(msg, name)
		case 2:
			return fmt.Sprintf(msg, name, e.Param())
		}
	}
	return fmt.Sprintf("Field '%s' is invalid: %s", name, e.Tag())
}

// fieldName returns the json name of a struct field, falling back to the Go name.
func fieldName(structType reflect.Type, e validator.FieldError) string {
	if structType.Kind() != reflect.Struct {
		return e.StructField()
	}
	field, ok := structType.FieldByName(e.StructField())
	if !ok {
		return e.StructField()
	}
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return e.StructField()
	}
	return strings.Split(tag, ",")[0]
}

// ValidateStruct validates a struct and returns a map of JSON field names to friendly error messages.
func ValidateStruct(s any) map[string]string {
	validationErrors := make(map[string]string)

	err := validate.Struct(s)
	if err == nil {
		return validationErrors
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		validationErrors["_"] = err.Error()
		return validationErrors
	}

	structType := reflect.Indirect(reflect.ValueOf(s)).Type()
	for _, e := range validationErrs {
		name := fieldName(structType, e)
		validationErrors[name] = parseMessage(name, e)
	}
	return validationErrors
}

// Validate validates a struct and folds every failure into one error.
func Validate(s any) error {
	msgs := ValidateStruct(s)
	if len(msgs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(msgs))
	for k := range msgs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = msgs[k]
	}
	return errors.New(strings.Join(parts, " "))
}
