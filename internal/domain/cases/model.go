package cases

import (
	"time"

	"github.com/google/uuid"
)

// SurgicalCase maps to the surgical_case table. This is the root of the
// surgical workflow: every plan, form and booking hangs off a case.
type SurgicalCase struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PatientID        uuid.UUID  `db:"patient_id" json:"patient_id"`
	PrimarySurgeonID uuid.UUID  `db:"primary_surgeon_id" json:"primary_surgeon_id"`
	ConsultationID   *uuid.UUID `db:"consultation_id" json:"consultation_id,omitempty"`
	Status           string     `db:"status" json:"status"`
	Urgency          string     `db:"urgency" json:"urgency"`
	CancelReason     *string    `db:"cancel_reason" json:"cancel_reason,omitempty"`
	Note             *string    `db:"note" json:"note,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// TheatreBooking maps to the theatre_booking table. A case needs a booking
// before it may advance to the scheduled state.
type TheatreBooking struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	SurgicalCaseID uuid.UUID  `db:"surgical_case_id" json:"surgical_case_id"`
	TheatreName    string     `db:"theatre_name" json:"theatre_name"`
	ScheduledDate  time.Time  `db:"scheduled_date" json:"scheduled_date"`
	ScheduledStart *time.Time `db:"scheduled_start" json:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time `db:"scheduled_end" json:"scheduled_end,omitempty"`
	Note           *string    `db:"note" json:"note,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// StaffInvite maps to the staff_invite table. An accepted invite grants a
// non-primary clinician the right to act on a case.
type StaffInvite struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	SurgicalCaseID uuid.UUID  `db:"surgical_case_id" json:"surgical_case_id"`
	UserID         uuid.UUID  `db:"user_id" json:"user_id"`
	InvitedRole    string     `db:"invited_role" json:"invited_role"`
	Status         string     `db:"status" json:"status"`
	RespondedAt    *time.Time `db:"responded_at" json:"responded_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// Invite statuses.
const (
	InvitePending  = "pending"
	InviteAccepted = "accepted"
	InviteDeclined = "declined"
)

var validInviteRoles = map[string]bool{
	"surgeon": true, "assistant": true, "anesthetist": true, "scrub-nurse": true,
}

var validUrgencies = map[string]bool{
	"elective": true, "urgent": true, "emergency": true,
}
