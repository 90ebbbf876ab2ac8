package store

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch is returned by Add when a new encoding's length differs
// from the encodings already stored. The encoder contract fixes the dimension,
// so a mismatch means the caller mixed encoder versions or models.
var ErrDimensionMismatch = errors.New("encoding dimension does not match stored records")

// CorruptSnapshotError reports a snapshot file that exists but cannot be decoded.
// Open treats it leniently (logs and starts empty); callers that need strictness
// can call Load directly and inspect the error.
type CorruptSnapshotError struct {
	Path string
	Err  error
}

func (e *CorruptSnapshotError) Error() string {
	return fmt.Sprintf("corrupt snapshot %s: %v", e.Path, e.Err)
}

func (e *CorruptSnapshotError) Unwrap() error {
	return e.Err
}
