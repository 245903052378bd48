package database

import "github.com/pkg/errors"

// ErrNotFound is wrapped by every error returned for a missing key.
var ErrNotFound = errors.New("not found")

// IsNotFoundError returns whether err wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
