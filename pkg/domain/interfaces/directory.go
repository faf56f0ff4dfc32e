package interfaces

import (
	"context"

	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// AreaRepository defines the interface for area access
type AreaRepository interface {
	Put(ctx context.Context, a *model.Area) error
	Get(ctx context.Context, id types.AreaID) (*model.Area, error)
	List(ctx context.Context) ([]*model.Area, error)
}

// ResponsibleRepository defines the interface for responsible access
type ResponsibleRepository interface {
	Put(ctx context.Context, r *model.Responsible) error
	Get(ctx context.Context, id types.ResponsibleID) (*model.Responsible, error)
	GetMany(ctx context.Context, ids []types.ResponsibleID) ([]*model.Responsible, error)
	List(ctx context.Context) ([]*model.Responsible, error)
}

// SignerRepository defines the interface for signer assignment access
type SignerRepository interface {
	Put(ctx context.Context, s *model.SignerAssignment) error

	// Get returns the signer assignment for the obligation at the given
	// status, or ErrNotFound when no signers are assigned.
	Get(ctx context.Context, obligationID types.ObligationID, status types.ObligationStatus) (*model.SignerAssignment, error)
}

// ThemeRepository defines the interface for theme access
type ThemeRepository interface {
	Put(ctx context.Context, t *model.Theme) error
	Get(ctx context.Context, id types.ThemeID) (*model.Theme, error)
	List(ctx context.Context) ([]*model.Theme, error)
}

// AttachmentRepository defines the interface for attachment metadata access
type AttachmentRepository interface {
	Put(ctx context.Context, a *model.Attachment) error
	Get(ctx context.Context, id types.AttachmentID) (*model.Attachment, error)
	List(ctx context.Context, obligationID types.ObligationID) ([]*model.Attachment, error)
}
