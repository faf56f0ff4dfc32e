package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// obligationRepository owns both the obligation aggregates and their
// routing histories so that CommitRouting can apply both under one lock.
type obligationRepository struct {
	mu      sync.RWMutex
	items   map[types.ObligationID]*model.Obligation
	actions map[types.ObligationID][]*model.RoutingAction
	nextID  types.ObligationID
}

func newObligationRepository() *obligationRepository {
	return &obligationRepository{
		items:   make(map[types.ObligationID]*model.Obligation),
		actions: make(map[types.ObligationID][]*model.RoutingAction),
		nextID:  1,
	}
}

func (r *obligationRepository) Create(ctx context.Context, o *model.Obligation) (*model.Obligation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := o.Clone()
	created.ID = r.nextID
	created.Revision = 1
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	r.items[created.ID] = created
	return created.Clone(), nil
}

func (r *obligationRepository) Get(ctx context.Context, id types.ObligationID) (*model.Obligation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, exists := r.items[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "obligation not found", goerr.V("id", id))
	}
	return o.Clone(), nil
}

func (r *obligationRepository) List(ctx context.Context, opts interfaces.ListObligationOptions) ([]*model.Obligation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Obligation, 0, len(r.items))
	for _, o := range r.items {
		if o.Inactive && !opts.IncludeInactive {
			continue
		}
		if opts.Status != "" && o.Status != opts.Status {
			continue
		}
		if opts.AreaID != "" && o.AssignedAreaID != opts.AreaID && !o.IsConditioningArea(opts.AreaID) {
			continue
		}
		out = append(out, o.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *obligationRepository) Update(ctx context.Context, o *model.Obligation) (*model.Obligation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.items[o.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "obligation not found", goerr.V("id", o.ID))
	}
	if existing.Revision != o.Revision {
		return nil, goerr.Wrap(ErrRevisionMismatch, "stale obligation revision",
			goerr.V("id", o.ID), goerr.V("stored", existing.Revision), goerr.V("given", o.Revision))
	}

	updated := o.Clone()
	updated.Revision = existing.Revision + 1
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.items[updated.ID] = updated
	return updated.Clone(), nil
}

func (r *obligationRepository) CommitRouting(ctx context.Context, o *model.Obligation, action *model.RoutingAction) (*model.Obligation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.items[o.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "obligation not found", goerr.V("id", o.ID))
	}
	if existing.Revision != o.Revision {
		return nil, goerr.Wrap(ErrRevisionMismatch, "stale obligation revision",
			goerr.V("id", o.ID), goerr.V("stored", existing.Revision), goerr.V("given", o.Revision))
	}
	for _, a := range r.actions[o.ID] {
		if a.Level == action.Level {
			return nil, goerr.Wrap(ErrDuplicateLevel, "routing level already recorded",
				goerr.V("id", o.ID), goerr.V("level", action.Level))
		}
	}

	now := time.Now().UTC()
	stored := action.Clone()
	stored.ObligationID = o.ID
	stored.CreatedAt = now

	updated := o.Clone()
	updated.Revision = existing.Revision + 1
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = now

	r.actions[o.ID] = append(r.actions[o.ID], stored)
	r.items[o.ID] = updated
	return updated.Clone(), nil
}

// listActions returns the routing actions of an obligation ordered by level
func (r *obligationRepository) listActions(id types.ObligationID) []*model.RoutingAction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	actions := r.actions[id]
	out := make([]*model.RoutingAction, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

// routingActionRepository reads the append-only routing history
type routingActionRepository struct {
	store *obligationRepository
}

func (r *routingActionRepository) List(ctx context.Context, obligationID types.ObligationID) ([]*model.RoutingAction, error) {
	return r.store.listActions(obligationID), nil
}

func (r *routingActionRepository) Last(ctx context.Context, obligationID types.ObligationID) (*model.RoutingAction, error) {
	actions := r.store.listActions(obligationID)
	if len(actions) == 0 {
		return nil, goerr.Wrap(ErrNotFound, "no routing actions", goerr.V("id", obligationID))
	}
	return actions[len(actions)-1], nil
}
