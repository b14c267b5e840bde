package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by a backend when no persisted data exists yet.
var ErrNotFound = errors.New("no stored workouts")

// ParseError reports persisted data that could not be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
