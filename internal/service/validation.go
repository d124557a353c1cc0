package service

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"journal-rag/internal/apperr"
)

// validationError converts ozzo validation errors into an apperr.ValidationError
// naming the first failing field.
func validationError(err error) error {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if errors.As(err, &errs) && len(errs) > 0 {
		fields := make([]string, 0, len(errs))
		for field := range errs {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		return &apperr.ValidationError{Field: fields[0], Message: errs[fields[0]].Error()}
	}
	return &apperr.ValidationError{Field: "request", Message: err.Error()}
}
