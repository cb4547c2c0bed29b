package audit

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockRepo struct {
	entries []*Entry
	failing bool
}

func (m *mockRepo) Append(_ context.Context, e *Entry) error {
	if m.failing {
		return fmt.Errorf("append failed")
	}
	e.ID = uuid.New()
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockRepo) ListByEntity(_ context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	var result []*Entry
	for _, e := range m.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			result = append(result, e)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) ListByActor(_ context.Context, actorID string, limit, offset int) ([]*Entry, int, error) {
	var result []*Entry
	for _, e := range m.entries {
		if e.ActorID == actorID {
			result = append(result, e)
		}
	}
	return result, len(result), nil
}

func TestRecord(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, zerolog.Nop())

	entityID := uuid.New()
	svc.Record(context.Background(), "surgeon-1", EntitySurgicalCase, entityID, ActionStatusTransition,
		map[string]interface{}{"from": "draft", "to": "planning"})

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	e := repo.entries[0]
	if e.ActorID != "surgeon-1" || e.Action != ActionStatusTransition {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.Metadata["to"] != "planning" {
		t.Errorf("expected metadata to carry target status, got %v", e.Metadata)
	}
}

func TestRecord_AppendFailureDoesNotPanic(t *testing.T) {
	repo := &mockRepo{failing: true}
	svc := NewService(repo, zerolog.Nop())

	// Must not panic or propagate the repository error.
	svc.Record(context.Background(), "surgeon-1", EntityCasePlan, uuid.New(), ActionUpdate, nil)

	if len(repo.entries) != 0 {
		t.Errorf("expected no entries, got %d", len(repo.entries))
	}
}

func TestTrail(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, zerolog.Nop())

	entityID := uuid.New()
	svc.Record(context.Background(), "nurse-1", EntityClinicalForm, entityID, ActionFinalize, nil)
	svc.Record(context.Background(), "nurse-1", EntityClinicalForm, uuid.New(), ActionUpdate, nil)

	items, total, err := svc.Trail(context.Background(), EntityClinicalForm, entityID, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected 1 entry for entity, got %d", total)
	}

	actorItems, actorTotal, err := svc.ActorTrail(context.Background(), "nurse-1", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if actorTotal != 2 || len(actorItems) != 2 {
		t.Fatalf("expected 2 entries for actor, got %d", actorTotal)
	}
}
