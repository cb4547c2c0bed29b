package forms

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrCorruptPayload marks a stored form payload that no longer parses as
// JSON. Distinct from validation failure: it is an invariant breach in the
// store, not a user input problem.
var ErrCorruptPayload = errors.New("corrupt form payload")

// ErrAlreadyFinal is returned by guarded writes when the form left draft
// status between the caller's read and the write, typically because a
// concurrent finalizer won the race.
var ErrAlreadyFinal = errors.New("form is already final")

// FormRepository persists clinical form responses.
type FormRepository interface {
	Create(ctx context.Context, f *ClinicalFormResponse) error
	Get(ctx context.Context, caseID uuid.UUID, templateKey string, version int) (*ClinicalFormResponse, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]*ClinicalFormResponse, error)
	UpdateData(ctx context.Context, id uuid.UUID, data map[string]interface{}) error
	MarkFinal(ctx context.Context, id uuid.UUID, signedBy uuid.UUID) error
}

// ProcedureRecordRepository persists the medico-legal procedure snapshots.
type ProcedureRecordRepository interface {
	UpsertForCase(ctx context.Context, rec *SurgicalProcedureRecord) error
	GetByCase(ctx context.Context, caseID uuid.UUID) (*SurgicalProcedureRecord, error)
}
