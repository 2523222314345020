package service

import (
	"errors"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid state")

	ErrNotAuthenticated   = errors.New("please login first")
	ErrForbidden          = errors.New("admin access required")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountBlocked     = errors.New("your account has been blocked")
	ErrStockLimitReached  = errors.New("stock limit reached")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrOrderFailed        = errors.New("order failed, please try again")
	ErrDuplicateProduct   = errors.New("product with this name already exists")
	ErrProtectedAccount   = errors.New("admin accounts cannot be blocked")
)

// ValidationError names the first form field that failed
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

// Unwrap lets callers match any validation failure with ErrInvalidInput
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func requireAdmin(s *SessionService) error {
	u := s.Current()
	if u == nil {
		return ErrNotAuthenticated
	}
	if !u.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
