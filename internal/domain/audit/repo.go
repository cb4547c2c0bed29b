package audit

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Append(ctx context.Context, e *Entry) error
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]*Entry, int, error)
	ListByActor(ctx context.Context, actorID string, limit, offset int) ([]*Entry, int, error)
}
