package service

import (
	"errors"
	"fmt"

	"it-inventory/pkg/validator"
)

var (
	ErrItemNotFound        = errors.New("item not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInsufficientStock   = errors.New("insufficient stock remaining")
	ErrItemHasTransactions = errors.New("item has transaction history and cannot be deleted")
)

// ValidationError reports the first offending input field.
type ValidationError struct {
	Field string
	Tag   string
	Param string
}

func (e *ValidationError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("validation failed: field '%s' failed on tag '%s=%s'", e.Field, e.Tag, e.Param)
	}
	return fmt.Sprintf("validation failed: field '%s' failed on tag '%s'", e.Field, e.Tag)
}

// validate runs struct validation and converts the first failure.
func validate(req interface{}) error {
	errs := validator.ValidateStruct(req)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	return &ValidationError{Field: first.FailedField, Tag: first.Tag, Param: first.Value}
}
