package store

import "errors"

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConsistency indicates the coupled stores disagree: an item references
// a hash with no blob row, or a ref count would go negative. This is a
// defect, not a user condition; callers treat the affected comic as
// unrecoverable rather than risking corrupt reads.
var ErrConsistency = errors.New("storage consistency failure")
