package usecase

import (
	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
	"github.com/obligo-lab/obligo/pkg/service/deadline"
	"github.com/obligo-lab/obligo/pkg/service/permission"
)

// UseCases bundles the application operations over one repository
type UseCases struct {
	repo        interfaces.Repository
	evaluator   *permission.Evaluator
	calculator  *deadline.Calculator
	notifier    interfaces.Notifier
	attachments interfaces.AttachmentStore

	Obligation *ObligationUseCase
	Routing    *RoutingUseCase
	Annotation *AnnotationUseCase
	Permission *PermissionUseCase
	Auth       AuthUseCaseInterface
}

type Option func(*UseCases)

// WithDeadlineCalculator overrides the default SLA table
func WithDeadlineCalculator(c *deadline.Calculator) Option {
	return func(uc *UseCases) {
		uc.calculator = c
	}
}

// WithNotifier sets the notification sink for routing hand-offs and mentions
func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

// WithAttachmentStore sets the byte store behind attachment uploads
func WithAttachmentStore(s interfaces.AttachmentStore) Option {
	return func(uc *UseCases) {
		uc.attachments = s
	}
}

// WithAuth sets the authentication use case
func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:       repo,
		evaluator:  permission.New(),
		calculator: deadline.New(nil),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Obligation = &ObligationUseCase{uc: uc}
	uc.Routing = &RoutingUseCase{uc: uc}
	uc.Annotation = &AnnotationUseCase{uc: uc}
	uc.Permission = &PermissionUseCase{uc: uc}

	return uc
}

// Repo exposes the repository for controller-level reads
func (uc *UseCases) Repo() interfaces.Repository {
	return uc.repo
}

// AttachmentStore exposes the configured byte store, nil when absent
func (uc *UseCases) AttachmentStore() interfaces.AttachmentStore {
	return uc.attachments
}
