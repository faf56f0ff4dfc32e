package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
	"github.com/obligo-lab/obligo/pkg/domain/model/auth"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"github.com/obligo-lab/obligo/pkg/utils/logging"
)

// AuthUseCaseInterface abstracts authentication so the controller can run
// against the real JWT flow or the no-auth development mode.
type AuthUseCaseInterface interface {
	// HandleLogin verifies an identity-provider JWT and mints a session
	HandleLogin(ctx context.Context, rawToken string) (*auth.Token, auth.TokenSecret, error)

	// ValidateToken resolves a stored session to the acting responsible
	ValidateToken(ctx context.Context, tokenID auth.TokenID, secret auth.TokenSecret) (*auth.Actor, error)

	// Logout revokes the session
	Logout(ctx context.Context, tokenID auth.TokenID) error

	// IsNoAuthn reports whether this is the development no-auth mode
	IsNoAuthn() bool
}

// AuthUseCase verifies identity-provider JWTs against a JWKS endpoint and
// exchanges them for server-side session tokens. The JWT's sub claim must
// match a registered responsible.
type AuthUseCase struct {
	repo     interfaces.Repository
	jwksURL  string
	issuer   string
	audience string
}

var _ AuthUseCaseInterface = &AuthUseCase{}

// NewAuthUseCase creates the JWT-backed auth use case
func NewAuthUseCase(repo interfaces.Repository, jwksURL, issuer, audience string) *AuthUseCase {
	return &AuthUseCase{
		repo:     repo,
		jwksURL:  jwksURL,
		issuer:   issuer,
		audience: audience,
	}
}

func (uc *AuthUseCase) HandleLogin(ctx context.Context, rawToken string) (*auth.Token, auth.TokenSecret, error) {
	keySet, err := jwk.Fetch(ctx, uc.jwksURL)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to fetch JWKS", goerr.V("jwks_url", uc.jwksURL))
	}

	opts := []jwt.ParseOption{
		jwt.WithKeySet(keySet),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(10 * time.Second),
	}
	if uc.issuer != "" {
		opts = append(opts, jwt.WithIssuer(uc.issuer))
	}
	if uc.audience != "" {
		opts = append(opts, jwt.WithAudience(uc.audience))
	}

	parsed, err := jwt.Parse([]byte(rawToken), opts...)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to verify identity token")
	}

	sub := parsed.Subject()
	if sub == "" {
		return nil, "", goerr.New("identity token has no sub claim")
	}

	// The subject must be a registered responsible; identity providers do
	// not create accounts here.
	if _, err := uc.repo.Responsible().Get(ctx, types.ResponsibleID(sub)); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, "", goerr.Wrap(ErrResponsibleNotFound, "unknown responsible", goerr.V("sub", sub))
		}
		return nil, "", err
	}

	token, secret, err := auth.NewToken(types.ResponsibleID(sub))
	if err != nil {
		return nil, "", err
	}
	if err := uc.repo.PutToken(ctx, token); err != nil {
		return nil, "", err
	}

	logging.From(ctx).Info("session issued", "sub", sub, "token_id", token.ID)
	return token, secret, nil
}

func (uc *AuthUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID, secret auth.TokenSecret) (*auth.Actor, error) {
	token, err := uc.repo.GetToken(ctx, tokenID)
	if err != nil {
		return nil, goerr.Wrap(err, "unknown session", goerr.V("token_id", tokenID))
	}
	if err := token.Verify(secret, time.Now().UTC()); err != nil {
		return nil, err
	}
	return actorFor(ctx, uc.repo, token.Sub)
}

func (uc *AuthUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	return uc.repo.DeleteToken(ctx, tokenID)
}

func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

// actorFor resolves a responsible ID to the request actor
func actorFor(ctx context.Context, repo interfaces.Repository, id types.ResponsibleID) (*auth.Actor, error) {
	r, err := repo.Responsible().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrResponsibleNotFound, "unknown responsible", goerr.V("id", id))
		}
		return nil, err
	}
	return &auth.Actor{
		ResponsibleID: r.ID,
		Name:          r.FullName,
		Role:          r.Role,
		AreaIDs:       r.AreaIDs,
	}, nil
}
