package apperrors

import (
	"errors"
	"fmt"
)

// Sentinels for the four failure classes the handlers know how to map to
// HTTP statuses. Cache and third-party lookup failures are never wrapped in
// these: they are logged where they happen and the request proceeds.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrAuth       = errors.New("unauthorized")
	ErrForbidden  = errors.New("forbidden")
	ErrUpstream   = errors.New("upstream failure")
)

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Auth(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAuth, fmt.Sprintf(format, args...))
}

func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

func Upstream(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrUpstream, context, err)
}

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsAuth(err error) bool       { return errors.Is(err, ErrAuth) }
func IsForbidden(err error) bool  { return errors.Is(err, ErrForbidden) }
