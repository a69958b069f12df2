package service

import (
	"errors"
	"fmt"
)

// Error categories surfaced to the request boundary
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

var (
	ErrCityNotResolved = fmt.Errorf("%w: city could not be determined from coordinates", ErrInvalidInput)

	ErrEmailTaken     = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrUsernameTaken  = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrIdentityLinked = fmt.Errorf("%w: identity already linked to a user", ErrConflict)
)
