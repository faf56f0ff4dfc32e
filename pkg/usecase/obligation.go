package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/model/auth"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"github.com/obligo-lab/obligo/pkg/service/deadline"
	"github.com/obligo-lab/obligo/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// ObligationUseCase covers the aggregate operations outside the routing
// engine: creation, reads, late justification, and lateness upkeep.
type ObligationUseCase struct {
	uc *UseCases
}

// Create validates and stores a new obligation. Principal and rejected
// references must point at existing obligations and form no cycle.
func (u *ObligationUseCase) Create(ctx context.Context, o *model.Obligation) (*model.Obligation, error) {
	if o.Status == "" {
		o.Status = types.StatusNotStarted
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	if err := u.checkReference(ctx, o.PrincipalObligationID); err != nil {
		return nil, goerr.Wrap(err, "invalid principal obligation reference", goerr.V("code", o.Code))
	}
	if err := u.checkReference(ctx, o.RejectedObligationID); err != nil {
		return nil, goerr.Wrap(err, "invalid rejected obligation reference", goerr.V("code", o.Code))
	}

	created, err := u.uc.repo.Obligation().Create(ctx, o)
	if err != nil {
		return nil, err
	}
	logging.From(ctx).Info("obligation created",
		"id", created.ID, "code", created.Code, "area", created.AssignedAreaID)
	return created, nil
}

// checkReference verifies a back-reference target exists and that following
// principal and rejected references from it never revisits an obligation on
// the same path (the new record has no ID yet, so any cycle must already
// exist among the stored records).
func (u *ObligationUseCase) checkReference(ctx context.Context, ref *types.ObligationID) error {
	if ref == nil {
		return nil
	}
	return u.walkReferences(ctx, *ref, make(map[types.ObligationID]struct{}))
}

func (u *ObligationUseCase) walkReferences(ctx context.Context, id types.ObligationID, path map[types.ObligationID]struct{}) error {
	if _, dup := path[id]; dup {
		return goerr.Wrap(ErrInvalidReference, "reference cycle detected", goerr.V("id", id))
	}

	target, err := u.uc.repo.Obligation().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrInvalidReference, "referenced obligation does not exist", goerr.V("id", id))
		}
		return err
	}

	path[id] = struct{}{}
	defer delete(path, id)

	for _, next := range []*types.ObligationID{target.PrincipalObligationID, target.RejectedObligationID} {
		if next == nil {
			continue
		}
		if err := u.walkReferences(ctx, *next, path); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves one obligation
func (u *ObligationUseCase) Get(ctx context.Context, id types.ObligationID) (*model.Obligation, error) {
	return u.uc.loadObligation(ctx, id)
}

// List retrieves obligations with optional filters
func (u *ObligationUseCase) List(ctx context.Context, opts interfaces.ListObligationOptions) ([]*model.Obligation, error) {
	return u.uc.repo.Obligation().List(ctx, opts)
}

// SetLateJustification records why the obligation missed its limit date.
// Only valid while the obligation is Late, and only for actors the
// permission matrix allows.
func (u *ObligationUseCase) SetLateJustification(ctx context.Context, id types.ObligationID, text string) (*model.Obligation, *model.Denial, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	if text == "" {
		return nil, nil, goerr.New("late justification text is required", goerr.V("id", id))
	}

	for attempt := 0; ; attempt++ {
		o, err := u.uc.loadObligation(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if o.Status != types.StatusLate {
			return nil, model.NewDenial(types.ReasonObligationNotLate,
				"a late justification only applies to a late obligation"), nil
		}

		snap, err := u.uc.buildSnapshot(ctx, o)
		if err != nil {
			return nil, nil, err
		}
		if d := u.uc.evaluator.Evaluate(types.ActionSubmitLateJustification, actor, snap); !d.Allowed {
			return nil, d.Denial(), nil
		}

		o.LateJustification = &model.LateJustification{
			Text:     text,
			AuthorID: actor.ResponsibleID,
			At:       time.Now().UTC(),
		}
		updated, err := u.uc.repo.Obligation().Update(ctx, o)
		if err == nil {
			return updated, nil, nil
		}
		if errors.Is(err, interfaces.ErrRevisionMismatch) && attempt == 0 {
			continue
		}
		if errors.Is(err, interfaces.ErrRevisionMismatch) {
			return nil, model.NewDenial(types.ReasonRevisionConflict,
				"the obligation changed while saving; reload and try again"), nil
		}
		return nil, nil, err
	}
}

// RefreshLateness flips InProgress to Late when the limit date has passed,
// and Late back to InProgress when a deadline extension un-lates it.
// Returns the obligation and whether the status changed.
func (u *ObligationUseCase) RefreshLateness(ctx context.Context, id types.ObligationID) (*model.Obligation, bool, error) {
	o, err := u.uc.loadObligation(ctx, id)
	if err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	var next types.ObligationStatus
	switch {
	case o.Status == types.StatusInProgress && deadline.Overdue(o, now):
		next = types.StatusLate
	case o.Status == types.StatusLate && !now.After(o.LimitDate):
		next = types.StatusInProgress
	default:
		return o, false, nil
	}

	o.Status = next
	updated, err := u.uc.repo.Obligation().Update(ctx, o)
	if err != nil {
		// A concurrent routing already moved the obligation; its lateness
		// will be re-derived on the next sweep.
		if errors.Is(err, interfaces.ErrRevisionMismatch) {
			return o, false, nil
		}
		return nil, false, err
	}
	logging.From(ctx).Info("obligation lateness updated",
		"id", updated.ID, "status", updated.Status)
	return updated, true, nil
}

const sweepConcurrency = 8

// SweepOverdue refreshes lateness across all active obligations. Returns
// the number of obligations whose status changed. This is the entry point
// an external scheduler calls periodically.
func (u *ObligationUseCase) SweepOverdue(ctx context.Context) (int, error) {
	list, err := u.uc.repo.Obligation().List(ctx, interfaces.ListObligationOptions{})
	if err != nil {
		return 0, err
	}

	var flipped atomic.Int64
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(sweepConcurrency)

	for _, o := range list {
		if o.Status.IsTerminal() {
			continue
		}
		id := o.ID
		eg.Go(func() error {
			_, changed, err := u.RefreshLateness(ctx, id)
			if err != nil {
				return err
			}
			if changed {
				flipped.Add(1)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return int(flipped.Load()), err
	}
	return int(flipped.Load()), nil
}

// Deactivate soft-deletes an obligation. History stays intact; the record
// only drops out of default listings.
func (u *ObligationUseCase) Deactivate(ctx context.Context, id types.ObligationID) (*model.Obligation, error) {
	o, err := u.uc.loadObligation(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Inactive {
		return o, nil
	}
	o.Inactive = true
	return u.uc.repo.Obligation().Update(ctx, o)
}
