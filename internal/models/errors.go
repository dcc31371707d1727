package models

import "errors"

// Terminal, user-visible failures. Services wrap these with context and
// handlers map them to HTTP codes with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("not authorized")
	ErrExpired            = errors.New("attempt has expired")
	ErrAlreadySubmitted   = errors.New("attempt already submitted")
	ErrEntitlementDenied  = errors.New("entitlement denied")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateEmail     = errors.New("email already registered")
)
