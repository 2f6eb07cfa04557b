package app

import (
	"context"

	"github.com/example/cadastre/internal/core/actor"
	"github.com/example/cadastre/internal/ports/secondary"
)

// authorize resolves the acting user and checks the one role an action
// declares. It runs before any state is read.
func authorize(ctx context.Context, actors secondary.ActorProvider, role actor.Role, action string) (actor.Actor, error) {
	a, err := actors.CurrentActor(ctx)
	if err != nil {
		return actor.Actor{}, err
	}
	if err := actor.CanPerform(a, role, action).Error(); err != nil {
		return actor.Actor{}, err
	}
	return a, nil
}
