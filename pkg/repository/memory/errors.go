package memory

import (
	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
)

// Shared sentinels re-exported so call sites inside the package read
// naturally. Matching happens against the interfaces package.
var (
	ErrNotFound         = interfaces.ErrNotFound
	ErrRevisionMismatch = interfaces.ErrRevisionMismatch
	ErrDuplicateLevel   = interfaces.ErrDuplicateLevel
)
