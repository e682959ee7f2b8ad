package metadata

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is matched by every error the factory returns
	// for a misconfigured entity
	ErrInvalidConfiguration = errors.New("invalid metadata configuration")

	// ErrDiscriminatorMapMissing is returned when a discriminator declares no map
	ErrDiscriminatorMapMissing = errors.New("discriminator map is missing")

	// ErrSubclassNotFound is returned when a discriminator type tag resolves to no class
	ErrSubclassNotFound = errors.New("discriminator subclass not found")

	// ErrConstructorArguments is returned when a probed class requires constructor arguments
	ErrConstructorArguments = errors.New("class requires constructor arguments")
)

// Error is a metadata configuration error. It aborts the whole
// CreateMetadata call.
type Error struct {
	Entity string
	Cause  error
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("metadata for %s: %v", e.Entity, e.Cause)
	}
	return fmt.Sprintf("metadata for %s: %v: %s", e.Entity, e.Cause, e.Detail)
}

// Unwrap exposes both the configuration sentinel and the cause
func (e *Error) Unwrap() []error {
	return []error{ErrInvalidConfiguration, e.Cause}
}

func newError(entity string, cause error, format string, args ...any) *Error {
	return &Error{
		Entity: entity,
		Cause:  cause,
		Detail: fmt.Sprintf(format, args...),
	}
}

// IsConfigurationError reports whether err is a metadata configuration error
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

// IsSubclassNotFound reports whether err was caused by an unresolvable
// discriminator subclass
func IsSubclassNotFound(err error) bool {
	return errors.Is(err, ErrSubclassNotFound)
}
