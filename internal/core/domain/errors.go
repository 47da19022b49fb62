package domain

import "errors"

// Session errors
var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrRefresh                = errors.New("refresh token rejected")
	ErrAuthorizationDenied    = errors.New("authorization denied")
	ErrNetwork                = errors.New("network or server error")
)

// Calculation errors
var (
	ErrCalculation   = errors.New("calculation error")
	ErrZeroGetAmount = calculationError("get_amount must not be zero")
	ErrNonFinite     = calculationError("non-finite input")
)

type calcError struct {
	msg string
}

func calculationError(msg string) error {
	return &calcError{msg: msg}
}

func (e *calcError) Error() string { return e.msg }

// Is makes every calculation error match ErrCalculation
func (e *calcError) Is(target error) bool {
	return target == ErrCalculation
}
