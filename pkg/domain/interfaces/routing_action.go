package interfaces

import (
	"context"

	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// RoutingActionRepository defines read access to the append-only routing
// history. Writes happen exclusively through ObligationRepository.CommitRouting.
type RoutingActionRepository interface {
	// List returns the routing actions of an obligation ordered by level
	// ascending. The sequence is gapless starting at 1.
	List(ctx context.Context, obligationID types.ObligationID) ([]*model.RoutingAction, error)

	// Last returns the routing action with the highest level, or
	// ErrNotFound when the obligation has no routing history yet.
	Last(ctx context.Context, obligationID types.ObligationID) (*model.RoutingAction, error)
}
