// Package audit populates creation and modification metadata on entities.
//
// Stamping is explicit: the storage write path calls Stamper.OnCreate or
// Stamper.OnUpdate before the row is written.
package audit

import (
	"context"

	"github.com/google/uuid"
)

// SystemActor is recorded when no auditor can name the current actor.
const SystemActor = "system"

// AuditorAware supplies the identity of the actor performing a write.
type AuditorAware interface {
	// CurrentAuditor returns the actor for ctx and whether one is known.
	CurrentAuditor(ctx context.Context) (string, bool)
}

// AuditorFunc adapts a function to AuditorAware.
type AuditorFunc func(ctx context.Context) (string, bool)

// CurrentAuditor calls f(ctx).
func (f AuditorFunc) CurrentAuditor(ctx context.Context) (string, bool) {
	return f(ctx)
}

// RandomAuditor returns a provider that reports a fresh random UUID per call.
func RandomAuditor() AuditorAware {
	return AuditorFunc(func(context.Context) (string, bool) {
		return uuid.NewString(), true
	})
}

// FixedAuditor returns a provider that always reports name.
// An empty name reports no actor.
func FixedAuditor(name string) AuditorAware {
	return AuditorFunc(func(context.Context) (string, bool) {
		return name, name != ""
	})
}

type actorKey struct{}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored by WithActor.
func ActorFromContext(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(actorKey{}).(string)
	if !ok || actor == "" {
		return "", false
	}
	return actor, true
}

// ContextAuditor returns a provider reading the actor set by WithActor,
// delegating to fallback when the context carries none.
func ContextAuditor(fallback AuditorAware) AuditorAware {
	return AuditorFunc(func(ctx context.Context) (string, bool) {
		if actor, ok := ActorFromContext(ctx); ok {
			return actor, true
		}
		if fallback == nil {
			return "", false
		}
		return fallback.CurrentAuditor(ctx)
	})
}
