package resequencer

import "errors"

var (
	// ErrInvalidSoftLimit is returned when the soft limit is not positive.
	ErrInvalidSoftLimit = errors.New("resequencer: soft limit must be greater than zero")

	// ErrInvalidHardLimit is returned when the hard limit is negative.
	ErrInvalidHardLimit = errors.New("resequencer: hard limit must not be negative")

	// ErrNilComparator is returned when no comparator is supplied.
	ErrNilComparator = errors.New("resequencer: comparator is required")

	// ErrNilSuccessor is returned when no successor function is supplied.
	ErrNilSuccessor = errors.New("resequencer: successor is required")

	// ErrConcurrentConsume is returned when Consume or Flush is called while another
	// Consume or Flush on the same resequencer is still running.
	ErrConcurrentConsume = errors.New("resequencer: concurrent consume is not allowed")
)
