package entity

import "errors"

var (
	// ErrInvalidCapacity is returned when a bounded cache is created with a
	// capacity that is not strictly positive.
	ErrInvalidCapacity = errors.New("capacity must be positive")

	// ErrUnsupportedConfiguration is returned at construction time when a
	// retention combination cannot be honoured for the given types.
	ErrUnsupportedConfiguration = errors.New("unsupported configuration")

	// ErrUnsupportedOperation is returned by view operations that have no
	// corresponding map mutation, such as adding to a key view.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrConcurrentModification is reported by an iterator over a
	// single-threaded map that was structurally modified behind its back.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrNoCurrentEntry is returned by Iterator.Remove when Next has not been
	// called, or the current entry was already removed.
	ErrNoCurrentEntry = errors.New("iterator has no current entry")
)
