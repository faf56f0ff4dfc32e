package usecase

import (
	"context"

	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
	"github.com/obligo-lab/obligo/pkg/domain/model/auth"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// NoAuthnUseCase authenticates every request as one fixed responsible.
// Development and testing only.
type NoAuthnUseCase struct {
	repo interfaces.Repository
	sub  types.ResponsibleID
}

var _ AuthUseCaseInterface = &NoAuthnUseCase{}

// NewNoAuthnUseCase creates the no-auth mode for the given responsible
func NewNoAuthnUseCase(repo interfaces.Repository, sub types.ResponsibleID) *NoAuthnUseCase {
	return &NoAuthnUseCase{repo: repo, sub: sub}
}

func (uc *NoAuthnUseCase) HandleLogin(ctx context.Context, rawToken string) (*auth.Token, auth.TokenSecret, error) {
	return auth.NewToken(uc.sub)
}

// ValidateToken ignores the credentials and resolves the fixed responsible
func (uc *NoAuthnUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID, secret auth.TokenSecret) (*auth.Actor, error) {
	return actorFor(ctx, uc.repo, uc.sub)
}

func (uc *NoAuthnUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	return nil
}

func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
