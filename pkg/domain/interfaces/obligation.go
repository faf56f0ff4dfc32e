package interfaces

import (
	"context"

	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// ListObligationOptions filters obligation listings
type ListObligationOptions struct {
	Status          types.ObligationStatus
	AreaID          types.AreaID
	IncludeInactive bool
}

// ObligationRepository defines the interface for obligation aggregate access
type ObligationRepository interface {
	// Create creates a new obligation with auto-generated ID and revision 1
	Create(ctx context.Context, o *model.Obligation) (*model.Obligation, error)

	// Get retrieves an obligation by ID
	Get(ctx context.Context, id types.ObligationID) (*model.Obligation, error)

	// List retrieves obligations, optionally filtered
	List(ctx context.Context, opts ListObligationOptions) ([]*model.Obligation, error)

	// Update persists non-routing mutations (late justification, inactive
	// flag, deadline overrides). The revision must match the stored one;
	// ErrRevisionMismatch is returned otherwise and the revision is bumped
	// on success.
	Update(ctx context.Context, o *model.Obligation) (*model.Obligation, error)

	// CommitRouting atomically appends the routing action and applies the
	// obligation mutation (status, dates, revision bump) as one write.
	// Returns ErrRevisionMismatch when the stored revision differs from
	// o.Revision, and ErrDuplicateLevel when action.Level already exists.
	CommitRouting(ctx context.Context, o *model.Obligation, action *model.RoutingAction) (*model.Obligation, error)
}
