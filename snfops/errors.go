package snfops

// Copyright (c) 2025 Colin McRae

import (
	"errors"
	"fmt"
)

// Kinds of InvalidInputError
const (
	NonSquareMatrix = "non-square matrix"
	SingularMatrix  = "singular matrix"
	EntriesTooLarge = "entries too large"
)

// InvalidInputError is the only error Compute returns. Kind is one of
// NonSquareMatrix, SingularMatrix or EntriesTooLarge. The same input always
// fails the same way, so there is no point retrying.
type InvalidInputError struct {
	Kind   string
	Detail string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Kind, e.Detail)
}

// IsInvalidInput returns whether err is, or wraps, an InvalidInputError of the given
// kind. An empty kind matches any InvalidInputError.
func IsInvalidInput(err error, kind string) bool {
	var iie *InvalidInputError
	if !errors.As(err, &iie) {
		return false
	}
	return (kind == "") || (iie.Kind == kind)
}

func newInvalidInputError(kind, caller, format string, args ...interface{}) error {
	return &InvalidInputError{
		Kind:   kind,
		Detail: fmt.Sprintf("%s: %s", caller, fmt.Sprintf(format, args...)),
	}
}
