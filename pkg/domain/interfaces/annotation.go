package interfaces

import (
	"context"

	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// AnnotationRepository defines the interface for annotation access.
// Annotations are append-only and order-insensitive beyond their timestamp,
// so creation does not take the obligation aggregate lock.
type AnnotationRepository interface {
	// Create stores a new annotation
	Create(ctx context.Context, a *model.Annotation) (*model.Annotation, error)

	// Get retrieves an annotation by ID
	Get(ctx context.Context, id types.AnnotationID) (*model.Annotation, error)

	// List returns all annotations of an obligation ordered by creation
	// time ascending
	List(ctx context.Context, obligationID types.ObligationID) ([]*model.Annotation, error)

	// Delete removes an annotation. Author and terminal-status checks are
	// enforced by the use case layer.
	Delete(ctx context.Context, id types.AnnotationID) error
}
