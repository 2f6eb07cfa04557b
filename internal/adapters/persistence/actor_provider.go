// Package persistence contains adapters that resolve request-scoped state.
package persistence

import (
	"context"

	"github.com/example/cadastre/internal/core/actor"
	"github.com/example/cadastre/internal/core/errs"
	"github.com/example/cadastre/internal/ctxutil"
	"github.com/example/cadastre/internal/ports/secondary"
)

// ContextActorProvider resolves the actor from values a driving adapter
// (HTTP middleware or CLI flags) placed on the context.
type ContextActorProvider struct{}

// NewContextActorProvider creates a new ContextActorProvider.
func NewContextActorProvider() *ContextActorProvider {
	return &ContextActorProvider{}
}

// CurrentActor returns the (id, role) pair carried by ctx.
func (p *ContextActorProvider) CurrentActor(ctx context.Context) (actor.Actor, error) {
	id := ctxutil.ActorFromContext(ctx)
	if id == "" {
		return actor.Actor{}, errs.Authorization("no actor identity supplied")
	}
	role, err := actor.ParseRole(ctxutil.RoleFromContext(ctx))
	if err != nil {
		return actor.Actor{}, errs.Authorization("actor %s has no valid role", id)
	}
	return actor.Actor{ID: id, Role: role}, nil
}

// Ensure ContextActorProvider implements the interface
var _ secondary.ActorProvider = (*ContextActorProvider)(nil)
