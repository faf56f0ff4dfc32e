package interfaces

import (
	"context"

	"github.com/obligo-lab/obligo/pkg/domain/model/auth"
)

// Repository defines the interface for data persistence
type Repository interface {
	Obligation() ObligationRepository
	RoutingAction() RoutingActionRepository
	Annotation() AnnotationRepository
	Area() AreaRepository
	Responsible() ResponsibleRepository
	Signer() SignerRepository
	Theme() ThemeRepository
	Attachment() AttachmentRepository

	// Session token methods
	PutToken(ctx context.Context, token *auth.Token) error
	GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error)
	DeleteToken(ctx context.Context, tokenID auth.TokenID) error

	Close() error
}
