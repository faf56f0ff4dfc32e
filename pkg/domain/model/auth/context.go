package auth

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// Actor is the resolved identity attached to a request: who is acting,
// with which role, and which areas they belong to.
type Actor struct {
	ResponsibleID types.ResponsibleID
	Name          string
	Role          types.Role
	AreaIDs       []types.AreaID
}

type ctxKey struct{}

// ContextWithActor attaches the actor to the context
func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

// ActorFromContext extracts the actor from the context
func ActorFromContext(ctx context.Context) (*Actor, error) {
	actor, ok := ctx.Value(ctxKey{}).(*Actor)
	if !ok || actor == nil {
		return nil, goerr.New("no actor in context")
	}
	return actor, nil
}
