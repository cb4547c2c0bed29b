package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry maps to the audit_entry table. One row per successful mutation:
// who triggered which action on which entity, and why.
type Entry struct {
	ID         uuid.UUID              `db:"id" json:"id"`
	ActorID    string                 `db:"actor_id" json:"actor_id"`
	EntityType string                 `db:"entity_type" json:"entity_type"`
	EntityID   uuid.UUID              `db:"entity_id" json:"entity_id"`
	Action     string                 `db:"action" json:"action"`
	Metadata   map[string]interface{} `db:"metadata" json:"metadata,omitempty"`
	RecordedAt time.Time              `db:"recorded_at" json:"recorded_at"`
}

// Entity types recorded by the emitter.
const (
	EntitySurgicalCase    = "surgical_case"
	EntityCasePlan        = "case_plan"
	EntityConsentForm     = "consent_form"
	EntityPatientImage    = "patient_image"
	EntityClinicalForm    = "clinical_form_response"
	EntityProcedureRecord = "surgical_procedure_record"
	EntityStaffInvite     = "staff_invite"
	EntityTheatreBooking  = "theatre_booking"
)

// Actions recorded by the emitter.
const (
	ActionCreate           = "create"
	ActionUpdate           = "update"
	ActionStatusTransition = "status_transition"
	ActionFinalize         = "finalize"
	ActionSign             = "sign"
)
