package usecase

import (
	"context"

	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/model/auth"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// PermissionUseCase exposes bulk permission evaluation for UI rendering
type PermissionUseCase struct {
	uc *UseCases
}

// EvaluateAll resolves every action for the actor against the obligation's
// current state. Denied entries carry the reason text used as tooltip.
func (u *PermissionUseCase) EvaluateAll(ctx context.Context, obligationID types.ObligationID) (map[types.Action]model.Decision, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	o, err := u.uc.loadObligation(ctx, obligationID)
	if err != nil {
		return nil, err
	}
	snap, err := u.uc.buildSnapshot(ctx, o)
	if err != nil {
		return nil, err
	}
	return u.uc.evaluator.EvaluateAll(actor, snap), nil
}

// Evaluate resolves a single action for the actor
func (u *PermissionUseCase) Evaluate(ctx context.Context, obligationID types.ObligationID, action types.Action) (model.Decision, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return model.Decision{}, err
	}

	o, err := u.uc.loadObligation(ctx, obligationID)
	if err != nil {
		return model.Decision{}, err
	}
	snap, err := u.uc.buildSnapshot(ctx, o)
	if err != nil {
		return model.Decision{}, err
	}
	return u.uc.evaluator.Evaluate(action, actor, snap), nil
}
