package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/weatherodds/weatherodds/internal/climate"
)

// Field error codes.
const (
	CodeRequired         = "REQUIRED"
	CodeOutOfRange       = "OUT_OF_RANGE"
	CodeInvalidFormat    = "INVALID_FORMAT"
	CodeUnknownCondition = "UNKNOWN_CONDITION"
	CodeInvalid          = "INVALID"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names so field errors match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
		_, ok := climate.LookupCondition(climate.ConditionID(fl.Field().String()))
		return ok
	})

	return v
}

// Validate checks v against its validate tags and returns one FieldError per
// failing field, or nil when v is valid.
func Validate(v interface{}) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Message: err.Error(), Code: CodeInvalid}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, toFieldError(fe))
	}
	return out
}

func toFieldError(fe validator.FieldError) FieldError {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return FieldError{Field: field, Message: "is required", Code: CodeRequired}
	case "required_without_all":
		return FieldError{Field: field, Message: "at least one of probabilities, range or trend is required", Code: CodeRequired}
	case "gte":
		return FieldError{Field: field, Message: "must be at least " + fe.Param(), Code: CodeOutOfRange}
	case "lte":
		return FieldError{Field: field, Message: "must be at most " + fe.Param(), Code: CodeOutOfRange}
	case "min":
		return FieldError{Field: field, Message: fmt.Sprintf("must contain at least %s item(s)", fe.Param()), Code: CodeRequired}
	case "max":
		return FieldError{Field: field, Message: "must be at most " + fe.Param() + " characters", Code: CodeOutOfRange}
	case "datetime":
		return FieldError{Field: field, Message: "must be a date in YYYY-MM-DD form", Code: CodeInvalidFormat}
	case "condition":
		return FieldError{Field: field, Message: "must be one of: " + strings.Join(conditionIDs(), ", "), Code: CodeUnknownCondition}
	default:
		return FieldError{Field: field, Message: "is invalid", Code: CodeInvalid}
	}
}

func conditionIDs() []string {
	ids := make([]string, len(climate.Conditions))
	for i, c := range climate.Conditions {
		ids[i] = string(c.ID)
	}
	return ids
}
