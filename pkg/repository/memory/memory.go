package memory

import (
	"context"

	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
	"github.com/obligo-lab/obligo/pkg/domain/model/auth"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is the in-memory repository backend used for development and
// tests. All stores copy on read and write.
type Memory struct {
	obligation  *obligationRepository
	routing     *routingActionRepository
	annotation  *annotationRepository
	area        *areaRepository
	responsible *responsibleRepository
	signer      *signerRepository
	theme       *themeRepository
	attachment  *attachmentRepository
	tokens      *tokenStore
}

var _ interfaces.Repository = &Memory{}

// New creates an empty in-memory repository
func New() *Memory {
	obligationRepo := newObligationRepository()

	return &Memory{
		obligation:  obligationRepo,
		routing:     &routingActionRepository{store: obligationRepo},
		annotation:  newAnnotationRepository(),
		area:        newAreaRepository(),
		responsible: newResponsibleRepository(),
		signer:      newSignerRepository(),
		theme:       newThemeRepository(),
		attachment:  newAttachmentRepository(),
		tokens:      newTokenStore(),
	}
}

func (m *Memory) Obligation() interfaces.ObligationRepository {
	return m.obligation
}

func (m *Memory) RoutingAction() interfaces.RoutingActionRepository {
	return m.routing
}

func (m *Memory) Annotation() interfaces.AnnotationRepository {
	return m.annotation
}

func (m *Memory) Area() interfaces.AreaRepository {
	return m.area
}

func (m *Memory) Responsible() interfaces.ResponsibleRepository {
	return m.responsible
}

func (m *Memory) Signer() interfaces.SignerRepository {
	return m.signer
}

func (m *Memory) Theme() interfaces.ThemeRepository {
	return m.theme
}

func (m *Memory) Attachment() interfaces.AttachmentRepository {
	return m.attachment
}

func (m *Memory) PutToken(ctx context.Context, token *auth.Token) error {
	return m.tokens.Put(ctx, token)
}

func (m *Memory) GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	return m.tokens.Get(ctx, tokenID)
}

func (m *Memory) DeleteToken(ctx context.Context, tokenID auth.TokenID) error {
	return m.tokens.Delete(ctx, tokenID)
}

func (m *Memory) Close() error {
	return nil
}
