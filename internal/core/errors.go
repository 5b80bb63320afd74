package core

import "errors"

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyName         = errors.New("empty name")
	ErrDuplicateName     = errors.New("duplicate name")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrItemNotFound      = errors.New("item not found")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInsufficientEmpty = errors.New("insufficient empty cylinders")
)

// ValidationError blocks a record save entirely; nothing is persisted
// when one is returned.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Save-blocking validation failures.
var (
	ErrDateRequired       = &ValidationError{Msg: "Date required"}
	ErrTotalSalesRequired = &ValidationError{Msg: "Total Sales required"}
)

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
