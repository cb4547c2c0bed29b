package forms

import (
	"time"

	"github.com/google/uuid"
)

// ClinicalFormResponse maps to the clinical_form_response table. One row per
// (template key, template version, case); the unique index there is what
// serializes concurrent finalize attempts.
type ClinicalFormResponse struct {
	ID              uuid.UUID              `db:"id" json:"id"`
	SurgicalCaseID  uuid.UUID              `db:"surgical_case_id" json:"surgical_case_id"`
	TemplateKey     string                 `db:"template_key" json:"template_key"`
	TemplateVersion int                    `db:"template_version" json:"template_version"`
	Status          string                 `db:"status" json:"status"`
	Data            map[string]interface{} `db:"data" json:"data"`
	SignedByUserID  *uuid.UUID             `db:"signed_by_user_id" json:"signed_by_user_id,omitempty"`
	SignedAt        *time.Time             `db:"signed_at" json:"signed_at,omitempty"`
	CreatedAt       time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time              `db:"updated_at" json:"updated_at"`
}

// Form statuses. Final is terminal: amendments are out of scope and
// re-finalization is rejected.
const (
	FormDraft = "draft"
	FormFinal = "final"
)

// SurgicalProcedureRecord maps to the surgical_procedure_record table. It is
// a medico-legal snapshot copied out of the operative note at finalize time;
// the copy stays stable even if the note were ever amended.
type SurgicalProcedureRecord struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	SurgicalCaseID     uuid.UUID `db:"surgical_case_id" json:"surgical_case_id"`
	Diagnosis          string    `db:"diagnosis" json:"diagnosis"`
	ProcedurePerformed string    `db:"procedure_performed" json:"procedure_performed"`
	Findings           string    `db:"findings" json:"findings"`
	SurgeonName        string    `db:"surgeon_name" json:"surgeon_name"`
	AssistantNames     string    `db:"assistant_names" json:"assistant_names"`
	AnesthetistName    string    `db:"anesthetist_name" json:"anesthetist_name"`
	SourceFormID       uuid.UUID `db:"source_form_id" json:"source_form_id"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

func stringField(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func boolField(data map[string]interface{}, key string) bool {
	v, _ := data[key].(bool)
	return v
}

// snapshotFromNote copies the medico-legal fields out of a finalized
// operative note payload.
func snapshotFromNote(caseID uuid.UUID, formID uuid.UUID, data map[string]interface{}) *SurgicalProcedureRecord {
	return &SurgicalProcedureRecord{
		SurgicalCaseID:     caseID,
		Diagnosis:          stringField(data, "diagnosis"),
		ProcedurePerformed: stringField(data, "procedurePerformed"),
		Findings:           stringField(data, "findings"),
		SurgeonName:        stringField(data, "surgeonName"),
		AssistantNames:     stringField(data, "assistantNames"),
		AnesthetistName:    stringField(data, "anesthetistName"),
		SourceFormID:       formID,
	}
}
