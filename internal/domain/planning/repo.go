package planning

import (
	"context"

	"github.com/google/uuid"
)

// PlanRepository persists case plans.
type PlanRepository interface {
	Create(ctx context.Context, p *CasePlan) error
	GetByCase(ctx context.Context, caseID uuid.UUID) (*CasePlan, error)
	Update(ctx context.Context, p *CasePlan) error
}

// ConsentRepository persists consent forms.
type ConsentRepository interface {
	Create(ctx context.Context, f *ConsentForm) error
	GetByID(ctx context.Context, id uuid.UUID) (*ConsentForm, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]*ConsentForm, error)
	MarkSigned(ctx context.Context, id uuid.UUID, signedBy uuid.UUID) error
	HasSigned(ctx context.Context, caseID uuid.UUID) (bool, error)
}

// ImageRepository persists patient images.
type ImageRepository interface {
	Create(ctx context.Context, img *PatientImage) error
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]*PatientImage, error)
	HasTimepoint(ctx context.Context, caseID uuid.UUID, timepoint string) (bool, error)
}
