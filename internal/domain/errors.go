package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error produced by the core matches exactly one of these
// through errors.Is.
var (
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("not authorized")
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrPaymentFailed  = errors.New("payment failed")
)

// Error is a kinded error with a message meant for the end user.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func Validation(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

func Forbidden(format string, args ...any) error {
	return newError(ErrAuthorization, format, args...)
}

func Unauthenticated(format string, args ...any) error {
	return newError(ErrAuthentication, format, args...)
}

var (
	ErrInvalidCredentials    = Unauthenticated("invalid credentials")
	ErrAdminRequired         = Forbidden("admin access required")
	ErrEmptyCart             = Validation("cart is empty")
	ErrInvalidQuantity       = Validation("quantity must be greater than zero")
	ErrInvalidPaymentMethod  = Validation("invalid payment method")
	ErrReceiptAlreadyPrinted = errors.New("receipt already printed")
)

// PaymentError reports a declined payment. The order and the payment record
// it names have already been persisted.
type PaymentError struct {
	OrderID   uint64
	PaymentID uint64
	Method    string
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment #%d for order #%d was declined (%s)", e.PaymentID, e.OrderID, e.Method)
}

func (e *PaymentError) Unwrap() error { return ErrPaymentFailed }
