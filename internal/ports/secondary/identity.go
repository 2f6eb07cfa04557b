package secondary

import (
	"context"

	"github.com/example/cadastre/internal/core/actor"
)

// ActorProvider defines the secondary port for actor identity resolution.
// The core trusts whatever (id, role) pair it returns and performs no
// credential verification itself.
type ActorProvider interface {
	// CurrentActor returns the actor behind the request carried by ctx.
	CurrentActor(ctx context.Context) (actor.Actor, error)
}
