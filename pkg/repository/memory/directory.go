package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

type areaRepository struct {
	mu    sync.RWMutex
	items map[types.AreaID]*model.Area
}

func newAreaRepository() *areaRepository {
	return &areaRepository{items: make(map[types.AreaID]*model.Area)}
}

func (r *areaRepository) Put(ctx context.Context, a *model.Area) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *a
	stored.MemberIDs = append([]types.ResponsibleID(nil), a.MemberIDs...)
	now := time.Now().UTC()
	if existing, ok := r.items[a.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.items[a.ID] = &stored
	return nil
}

func (r *areaRepository) Get(ctx context.Context, id types.AreaID) (*model.Area, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.items[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "area not found", goerr.V("id", id))
	}
	copied := *a
	copied.MemberIDs = append([]types.ResponsibleID(nil), a.MemberIDs...)
	return &copied, nil
}

func (r *areaRepository) List(ctx context.Context) ([]*model.Area, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Area, 0, len(r.items))
	for _, a := range r.items {
		copied := *a
		copied.MemberIDs = append([]types.ResponsibleID(nil), a.MemberIDs...)
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type responsibleRepository struct {
	mu    sync.RWMutex
	items map[types.ResponsibleID]*model.Responsible
}

func newResponsibleRepository() *responsibleRepository {
	return &responsibleRepository{items: make(map[types.ResponsibleID]*model.Responsible)}
}

func (r *responsibleRepository) Put(ctx context.Context, resp *model.Responsible) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *resp
	stored.AreaIDs = append([]types.AreaID(nil), resp.AreaIDs...)
	now := time.Now().UTC()
	if existing, ok := r.items[resp.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.items[resp.ID] = &stored
	return nil
}

func (r *responsibleRepository) Get(ctx context.Context, id types.ResponsibleID) (*model.Responsible, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resp, exists := r.items[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "responsible not found", goerr.V("id", id))
	}
	copied := *resp
	copied.AreaIDs = append([]types.AreaID(nil), resp.AreaIDs...)
	return &copied, nil
}

func (r *responsibleRepository) GetMany(ctx context.Context, ids []types.ResponsibleID) ([]*model.Responsible, error) {
	out := make([]*model.Responsible, 0, len(ids))
	for _, id := range ids {
		resp, err := r.Get(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, resp)
	}
	return out, nil
}

func (r *responsibleRepository) List(ctx context.Context) ([]*model.Responsible, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Responsible, 0, len(r.items))
	for _, resp := range r.items {
		copied := *resp
		copied.AreaIDs = append([]types.AreaID(nil), resp.AreaIDs...)
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type signerKey struct {
	obligationID types.ObligationID
	status       types.ObligationStatus
}

type signerRepository struct {
	mu    sync.RWMutex
	items map[signerKey]*model.SignerAssignment
}

func newSignerRepository() *signerRepository {
	return &signerRepository{items: make(map[signerKey]*model.SignerAssignment)}
}

func (r *signerRepository) Put(ctx context.Context, s *model.SignerAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := s.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.items[signerKey{s.ObligationID, s.Status}] = stored
	return nil
}

func (r *signerRepository) Get(ctx context.Context, obligationID types.ObligationID, status types.ObligationStatus) (*model.SignerAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.items[signerKey{obligationID, status}]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "signer assignment not found",
			goerr.V("obligation_id", obligationID), goerr.V("status", status))
	}
	return s.Clone(), nil
}

type themeRepository struct {
	mu    sync.RWMutex
	items map[types.ThemeID]*model.Theme
}

func newThemeRepository() *themeRepository {
	return &themeRepository{items: make(map[types.ThemeID]*model.Theme)}
}

func (r *themeRepository) Put(ctx context.Context, t *model.Theme) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := t.Clone()
	now := time.Now().UTC()
	if existing, ok := r.items[t.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.items[t.ID] = stored
	return nil
}

func (r *themeRepository) Get(ctx context.Context, id types.ThemeID) (*model.Theme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.items[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "theme not found", goerr.V("id", id))
	}
	return t.Clone(), nil
}

func (r *themeRepository) List(ctx context.Context) ([]*model.Theme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Theme, 0, len(r.items))
	for _, t := range r.items {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type attachmentRepository struct {
	mu    sync.RWMutex
	items map[types.AttachmentID]*model.Attachment
}

func newAttachmentRepository() *attachmentRepository {
	return &attachmentRepository{items: make(map[types.AttachmentID]*model.Attachment)}
}

func (r *attachmentRepository) Put(ctx context.Context, a *model.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		return goerr.New("attachment ID is required", goerr.V("file", a.FileName))
	}
	stored := *a
	if stored.UploadedAt.IsZero() {
		stored.UploadedAt = time.Now().UTC()
	}
	r.items[a.ID] = &stored
	return nil
}

func (r *attachmentRepository) Get(ctx context.Context, id types.AttachmentID) (*model.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.items[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "attachment not found", goerr.V("id", id))
	}
	copied := *a
	return &copied, nil
}

func (r *attachmentRepository) List(ctx context.Context, obligationID types.ObligationID) ([]*model.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Attachment, 0)
	for _, a := range r.items {
		if a.ObligationID == obligationID {
			copied := *a
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out, nil
}
