package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/educator-assistant-backend/internal/platform/apierr"
)

var v = validator.New(validator.WithRequiredStructEnabled())

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Struct validates s against its `validate` tags and returns a 400 api error
// listing every failing field.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierr.BadRequest("validation_failed", err)
	}
	fields := Fields(verrs)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return apierr.BadRequest("validation_failed", errors.New(strings.Join(parts, "; ")))
}

func Fields(verrs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("must satisfy %s", fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param())
		}
		out = append(out, FieldError{Field: strings.ToLower(fe.Field()), Message: msg})
	}
	return out
}

// Var validates a single value against tag.
func Var(field any, tag string) error {
	return v.Var(field, tag)
}
