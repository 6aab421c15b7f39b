package commands

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest marks a request that can never succeed as sent.
var ErrInvalidRequest = errors.New("invalid request")

// ErrEmptyUpdate is returned for an update that names no field.
var ErrEmptyUpdate = fmt.Errorf("%w: update contains no fields", ErrInvalidRequest)

func invalidRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
