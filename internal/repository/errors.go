package repository

import (
	"errors"
	"fmt"
)

// ErrPersistence marks every failure that originates in the store. Callers
// treat it as a server-side fault, never as a client error.
var ErrPersistence = errors.New("persistence failure")

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
