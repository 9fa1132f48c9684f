package errors

import (
	"errors"
	"fmt"
)

// Common error types for the admin API client
var (
	// Session errors
	ErrNoRefreshToken         = errors.New("no refresh token")
	ErrRefreshRejected        = errors.New("refresh token rejected")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInvalidCredentials     = errors.New("invalid credentials")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")

	// Transport errors
	ErrNetworkFailure = errors.New("network failure")

	// Storage errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join wraps sentinel together with cause so both match errors.Is.
func Join(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}
