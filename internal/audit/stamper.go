package audit

import "context"

// Stamper fills audit fields before an entity is written.
type Stamper struct {
	auditor AuditorAware
}

// NewStamper creates a Stamper resolving actors through auditor.
// A nil auditor records SystemActor.
func NewStamper(auditor AuditorAware) *Stamper {
	return &Stamper{auditor: auditor}
}

// Actor resolves the current actor for ctx.
func (s *Stamper) Actor(ctx context.Context) string {
	if s == nil || s.auditor == nil {
		return SystemActor
	}
	actor, ok := s.auditor.CurrentAuditor(ctx)
	if !ok || actor == "" {
		return SystemActor
	}
	return actor
}

// OnCreate stamps creation and modification fields of entity.
// Entities without audit fields are left untouched.
func (s *Stamper) OnCreate(ctx context.Context, entity any) {
	now := ClockFromContext(ctx).Now()
	if e, ok := entity.(CreateTimed); ok {
		e.StampCreated(now)
	}
	if e, ok := entity.(CreateAttributed); ok {
		e.StampCreatedBy(s.Actor(ctx))
	}
}

// OnUpdate stamps modification fields of entity. Creation fields are kept.
func (s *Stamper) OnUpdate(ctx context.Context, entity any) {
	now := ClockFromContext(ctx).Now()
	if e, ok := entity.(ModifyTimed); ok {
		e.StampModified(now)
	}
	if e, ok := entity.(ModifyAttributed); ok {
		e.StampModifiedBy(s.Actor(ctx))
	}
}
