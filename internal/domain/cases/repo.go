package cases

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists surgical cases.
type Repository interface {
	Create(ctx context.Context, c *SurgicalCase) error
	GetByID(ctx context.Context, id uuid.UUID) (*SurgicalCase, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*SurgicalCase, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, cancelReason *string) error
}

// ListFilter narrows List results. Zero values mean no constraint.
type ListFilter struct {
	PatientID uuid.UUID
	SurgeonID uuid.UUID
	Status    string
	Urgency   string
}

// BookingRepository persists theatre bookings, one per case.
type BookingRepository interface {
	Create(ctx context.Context, b *TheatreBooking) error
	GetByCase(ctx context.Context, caseID uuid.UUID) (*TheatreBooking, error)
}

// InviteRepository persists staff invites.
type InviteRepository interface {
	Create(ctx context.Context, inv *StaffInvite) error
	GetByID(ctx context.Context, id uuid.UUID) (*StaffInvite, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]*StaffInvite, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	HasAccepted(ctx context.Context, caseID, userID uuid.UUID) (bool, error)
}
