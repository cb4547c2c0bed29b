package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service is the audit emitter. It is a terminal side effect of successful
// mutations: it is never consulted for authorization or validity, and a
// failed append must not fail the primary mutation from the caller's
// perspective. Failures are logged instead.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record appends an audit entry for a successful mutation. When the caller
// runs inside a transaction the append joins it, so the entry commits
// atomically with the mutation it describes.
func (s *Service) Record(ctx context.Context, actorID, entityType string, entityID uuid.UUID, action string, metadata map[string]interface{}) {
	entry := &Entry{
		ActorID:    actorID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Metadata:   metadata,
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Error().Err(err).
			Str("actor_id", actorID).
			Str("entity_type", entityType).
			Str("entity_id", entityID.String()).
			Str("action", action).
			Msg("audit append failed")
	}
}

// Trail returns the audit entries recorded against an entity, newest first.
func (s *Service) Trail(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	return s.repo.ListByEntity(ctx, entityType, entityID, limit, offset)
}

// ActorTrail returns the audit entries recorded for an actor, newest first.
func (s *Service) ActorTrail(ctx context.Context, actorID string, limit, offset int) ([]*Entry, int, error) {
	return s.repo.ListByActor(ctx, actorID, limit, offset)
}
