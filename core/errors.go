package core

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// KindBadRequest is the machine-readable kind carried by every ValidationError.
const KindBadRequest = "bad_request"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Kind() string { return KindBadRequest }

// IsValidationError reports whether the cause of err is a *ValidationError.
func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// ValidationErrorFrom translates validator.ValidationErrors into a *ValidationError.
// Any other error is returned untouched.
func ValidationErrorFrom(err error) error {
	vErrs, ok := errors.Cause(err).(validator.ValidationErrors)
	if !ok {
		return err
	}
	flds := make([]FieldError, 0, len(vErrs))
	for _, vErr := range vErrs {
		flds = append(flds, FieldError{Field: vErr.Field(), Error: vErr.Translate(Translator)})
	}
	msg := "invalid input"
	if len(flds) > 0 {
		msg = flds[0].Field + ": " + flds[0].Error
	}
	return NewValidationError(errors.New(msg), flds...)
}
