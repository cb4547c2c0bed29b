package planning

import (
	"time"

	"github.com/google/uuid"
)

// CasePlan maps to the case_plan table. One plan per case, created lazily
// on the first planning edit.
type CasePlan struct {
	ID                       uuid.UUID `db:"id" json:"id"`
	SurgicalCaseID           uuid.UUID `db:"surgical_case_id" json:"surgical_case_id"`
	ProcedurePlan            *string   `db:"procedure_plan" json:"procedure_plan,omitempty"`
	RiskFactors              *string   `db:"risk_factors" json:"risk_factors,omitempty"`
	PlannedAnesthesia        *string   `db:"planned_anesthesia" json:"planned_anesthesia,omitempty"`
	PreOpNotes               *string   `db:"pre_op_notes" json:"pre_op_notes,omitempty"`
	ImplantDetails           *string   `db:"implant_details" json:"implant_details,omitempty"`
	SpecialInstructions      *string   `db:"special_instructions" json:"special_instructions,omitempty"`
	EstimatedDurationMinutes *int      `db:"estimated_duration_minutes" json:"estimated_duration_minutes,omitempty"`
	ReadyForSurgery          bool      `db:"ready_for_surgery" json:"ready_for_surgery"`
	CreatedAt                time.Time `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time `db:"updated_at" json:"updated_at"`
}

// ConsentForm maps to the consent_form table.
type ConsentForm struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	SurgicalCaseID uuid.UUID  `db:"surgical_case_id" json:"surgical_case_id"`
	Title          string     `db:"title" json:"title"`
	Content        *string    `db:"content" json:"content,omitempty"`
	Status         string     `db:"status" json:"status"`
	SignedByUserID *uuid.UUID `db:"signed_by_user_id" json:"signed_by_user_id,omitempty"`
	SignedAt       *time.Time `db:"signed_at" json:"signed_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// Consent statuses.
const (
	ConsentDraft  = "draft"
	ConsentSigned = "signed"
)

// PatientImage maps to the patient_image table.
type PatientImage struct {
	ID               uuid.UUID `db:"id" json:"id"`
	SurgicalCaseID   uuid.UUID `db:"surgical_case_id" json:"surgical_case_id"`
	Timepoint        string    `db:"timepoint" json:"timepoint"`
	URL              string    `db:"url" json:"url"`
	Caption          *string   `db:"caption" json:"caption,omitempty"`
	UploadedByUserID string    `db:"uploaded_by_user_id" json:"uploaded_by_user_id"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Image timepoints.
const (
	TimepointPreOp   = "pre-op"
	TimepointIntraOp = "intra-op"
	TimepointPostOp  = "post-op"
)

var validTimepoints = map[string]bool{
	TimepointPreOp: true, TimepointIntraOp: true, TimepointPostOp: true,
}
