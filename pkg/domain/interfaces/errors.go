package interfaces

import "errors"

// Sentinel errors shared by every repository backend so the use case layer
// can match outcomes without knowing which backend produced them.
var (
	ErrNotFound = errors.New("record not found")

	// ErrRevisionMismatch signals an optimistic-lock failure on a routing
	// commit. The caller should refetch the obligation and retry once.
	ErrRevisionMismatch = errors.New("obligation revision mismatch")

	// ErrDuplicateLevel signals that a routing action already exists at the
	// level being committed. Exactly one of two concurrent commits for the
	// same level succeeds; the other receives this error.
	ErrDuplicateLevel = errors.New("routing action level already exists")
)
