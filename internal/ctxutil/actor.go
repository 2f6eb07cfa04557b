// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// ActorKey is the context key for the acting user's ID.
// Exported so it can be used consistently across packages.
type ActorKey struct{}

// RoleKey is the context key for the acting user's role.
type RoleKey struct{}

// WithActor returns a context carrying the acting user's ID and role.
func WithActor(ctx context.Context, actorID, role string) context.Context {
	ctx = context.WithValue(ctx, ActorKey{}, actorID)
	return context.WithValue(ctx, RoleKey{}, role)
}

// WithActorID returns a context with the actor ID embedded.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ActorKey{}, actorID)
}

// ActorFromContext returns the actor ID from context, or empty string if not set.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ActorKey{}).(string); ok {
		return v
	}
	return ""
}

// RoleFromContext returns the actor role from context, or empty string if not set.
func RoleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(RoleKey{}).(string); ok {
		return v
	}
	return ""
}
