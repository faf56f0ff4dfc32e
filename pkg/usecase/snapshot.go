package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"github.com/obligo-lab/obligo/pkg/service/permission"
)

// loadObligation fetches the aggregate, mapping repository not-found to the
// use case sentinel.
func (uc *UseCases) loadObligation(ctx context.Context, id types.ObligationID) (*model.Obligation, error) {
	o, err := uc.repo.Obligation().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrObligationNotFound, "no such obligation", goerr.V("id", id))
		}
		return nil, err
	}
	return o, nil
}

// buildSnapshot assembles the permission snapshot for the obligation's
// current status: signer assignment, level window, and evidence flag.
func (uc *UseCases) buildSnapshot(ctx context.Context, o *model.Obligation) (*permission.Snapshot, error) {
	actions, err := uc.repo.RoutingAction().List(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return uc.snapshotWith(ctx, o, actions)
}

// snapshotWith builds the snapshot from an already-loaded routing history
func (uc *UseCases) snapshotWith(ctx context.Context, o *model.Obligation, actions []*model.RoutingAction) (*permission.Snapshot, error) {
	signers, err := uc.repo.Signer().Get(ctx, o.ID, o.Status)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			return nil, err
		}
		signers = nil
	}

	attachments, err := uc.repo.Attachment().List(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	hasEvidence := false
	for _, a := range attachments {
		if a.Kind == types.DocumentKindComplianceEvidence {
			hasEvidence = true
			break
		}
	}

	return &permission.Snapshot{
		Obligation:  o,
		Signers:     signers,
		Window:      model.LevelWindow(actions, o.Status),
		HasEvidence: hasEvidence,
	}, nil
}
