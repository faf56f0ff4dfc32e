package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

type annotationRepository struct {
	mu    sync.RWMutex
	items map[types.AnnotationID]*model.Annotation
}

func newAnnotationRepository() *annotationRepository {
	return &annotationRepository{
		items: make(map[types.AnnotationID]*model.Annotation),
	}
}

func (r *annotationRepository) Create(ctx context.Context, a *model.Annotation) (*model.Annotation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := a.Clone()
	if created.ID == "" {
		created.ID = types.AnnotationID(uuid.NewString())
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	r.items[created.ID] = created
	return created.Clone(), nil
}

func (r *annotationRepository) Get(ctx context.Context, id types.AnnotationID) (*model.Annotation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.items[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "annotation not found", goerr.V("id", id))
	}
	return a.Clone(), nil
}

func (r *annotationRepository) List(ctx context.Context, obligationID types.ObligationID) ([]*model.Annotation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Annotation, 0)
	for _, a := range r.items {
		if a.ObligationID == obligationID {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *annotationRepository) Delete(ctx context.Context, id types.AnnotationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return goerr.Wrap(ErrNotFound, "annotation not found", goerr.V("id", id))
	}
	delete(r.items, id)
	return nil
}
