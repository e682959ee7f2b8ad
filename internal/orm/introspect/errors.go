package introspect

import "errors"

var (
	// ErrUnknownClass is returned when a class name is not registered
	ErrUnknownClass = errors.New("class does not exist")

	// ErrNotAStruct is returned when a reference does not denote a named struct type
	ErrNotAStruct = errors.New("entity must be a named struct type")

	// ErrAlreadyRegistered is returned when a class is registered twice
	ErrAlreadyRegistered = errors.New("class is already registered")

	// ErrInvalidConstructor is returned when a constructor has an unsupported signature
	ErrInvalidConstructor = errors.New("invalid constructor")

	// ErrConstructorArguments is returned when instantiating a class whose
	// constructor requires arguments
	ErrConstructorArguments = errors.New("constructor requires arguments")

	// ErrAmbiguousName is returned when a short name matches several classes
	ErrAmbiguousName = errors.New("ambiguous class name")
)
