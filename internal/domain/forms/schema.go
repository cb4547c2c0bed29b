package forms

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/surgiflow/surgiflow/pkg/outcome"
)

// Template keys.
const (
	TemplateWardChecklist = "ward-checklist"
	TemplateIntraOpRecord = "intra-op-record"
	TemplateOperativeNote = "operative-note"
)

// timeOfDay matches 00:00 through 23:59.
var timeOfDay = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

const minExplanationLen = 5

// Field value types understood by the registry.
const (
	fieldString = "string"
	fieldBool   = "bool"
	fieldNumber = "number"
	fieldTime   = "time"
	fieldVitals = "vitals"
)

// FieldSpec declares one field of a form template. Min/Max bound numeric
// fields; Required applies only to final validation, drafts accept any
// subset of fields.
type FieldSpec struct {
	Key      string
	Type     string
	Required bool
	Min      float64
	Max      float64
}

// vitalsBounds are the clinically plausible ranges for the vitals
// sub-object. Errors are reported with dotted paths ("vitals.systolicBP").
var vitalsBounds = []struct {
	key      string
	min, max float64
}{
	{"systolicBP", 50, 300},
	{"diastolicBP", 30, 200},
	{"pulse", 20, 300},
	{"temperature", 30, 45},
	{"spO2", 50, 100},
	{"respiratoryRate", 5, 60},
}

// FinalContext carries the cross-document signals final validation needs.
// The registry never looks other documents up itself; callers pass what
// they know.
type FinalContext struct {
	// LinkedCountDiscrepancy is true when the case's intra-op record
	// reports a count discrepancy. It switches the operative-note final
	// schema to demand a discrepancy comment.
	LinkedCountDiscrepancy bool
}

// Template is a declarative form definition plus optional conditional
// refinements that only apply at finalize time.
type Template struct {
	Key     string
	Version int
	Fields  []FieldSpec

	// refine runs after structural and required checks during final
	// validation only.
	refine func(payload map[string]interface{}, ctx FinalContext) []outcome.FieldError
}

// requireExplanationWhen returns a refinement demanding a plausible
// explanation string at noteKey whenever the boolean at flagKey is true.
func requireExplanationWhen(flagKey, noteKey string) func(map[string]interface{}, FinalContext) []outcome.FieldError {
	return func(payload map[string]interface{}, _ FinalContext) []outcome.FieldError {
		flagged, _ := payload[flagKey].(bool)
		if !flagged {
			return nil
		}
		note, _ := payload[noteKey].(string)
		if len(strings.TrimSpace(note)) < minExplanationLen {
			return []outcome.FieldError{{
				Path:    noteKey,
				Message: fmt.Sprintf("required when %s is true, minimum %d characters", flagKey, minExplanationLen),
			}}
		}
		return nil
	}
}

var registry = map[string]Template{
	TemplateWardChecklist: {
		Key:     TemplateWardChecklist,
		Version: 1,
		Fields: []FieldSpec{
			{Key: "patientIdentityConfirmed", Type: fieldBool, Required: true},
			{Key: "surgicalSiteMarked", Type: fieldBool, Required: true},
			{Key: "allergiesReviewed", Type: fieldBool, Required: true},
			{Key: "fastingConfirmed", Type: fieldBool, Required: true},
			{Key: "arrivalTime", Type: fieldTime, Required: true},
			{Key: "vitals", Type: fieldVitals, Required: true},
			{Key: "notes", Type: fieldString},
		},
	},
	TemplateIntraOpRecord: {
		Key:     TemplateIntraOpRecord,
		Version: 1,
		Fields: []FieldSpec{
			{Key: "anesthesiaStartTime", Type: fieldTime, Required: true},
			{Key: "surgeryStartTime", Type: fieldTime, Required: true},
			{Key: "surgeryEndTime", Type: fieldTime, Required: true},
			{Key: "estimatedBloodLossMl", Type: fieldNumber, Min: 0, Max: 5000},
			{Key: "vitals", Type: fieldVitals},
			{Key: "finalCountsCompleted", Type: fieldBool, Required: true},
			{Key: "countDiscrepancy", Type: fieldBool, Required: true},
			{Key: "countDiscrepancyNote", Type: fieldString},
			{Key: "signOutCompleted", Type: fieldBool, Required: true},
			{Key: "postopInstructionsConfirmed", Type: fieldBool, Required: true},
			{Key: "specimensLabeledConfirmed", Type: fieldBool, Required: true},
		},
		refine: requireExplanationWhen("countDiscrepancy", "countDiscrepancyNote"),
	},
	TemplateOperativeNote: {
		Key:     TemplateOperativeNote,
		Version: 1,
		Fields: []FieldSpec{
			{Key: "diagnosis", Type: fieldString, Required: true},
			{Key: "procedurePerformed", Type: fieldString, Required: true},
			{Key: "findings", Type: fieldString, Required: true},
			{Key: "surgeonName", Type: fieldString, Required: true},
			{Key: "assistantNames", Type: fieldString},
			{Key: "anesthetistName", Type: fieldString, Required: true},
			{Key: "complications", Type: fieldString},
			{Key: "postOpPlan", Type: fieldString, Required: true},
			{Key: "countDiscrepancyComment", Type: fieldString},
		},
		refine: func(payload map[string]interface{}, ctx FinalContext) []outcome.FieldError {
			if !ctx.LinkedCountDiscrepancy {
				return nil
			}
			comment, _ := payload["countDiscrepancyComment"].(string)
			if len(strings.TrimSpace(comment)) < minExplanationLen {
				return []outcome.FieldError{{
					Path:    "countDiscrepancyComment",
					Message: fmt.Sprintf("required when the intra-op record reports a count discrepancy, minimum %d characters", minExplanationLen),
				}}
			}
			return nil
		},
	},
}

// TemplateFor looks a template up by key.
func TemplateFor(key string) (Template, bool) {
	t, ok := registry[key]
	return t, ok
}

// TemplateKeys lists the registered templates in a stable order.
func TemplateKeys() []string {
	return []string{TemplateWardChecklist, TemplateIntraOpRecord, TemplateOperativeNote}
}

func checkField(spec FieldSpec, value interface{}) []outcome.FieldError {
	switch spec.Type {
	case fieldString:
		if _, ok := value.(string); !ok {
			return []outcome.FieldError{{Path: spec.Key, Message: "must be a string"}}
		}
	case fieldBool:
		if _, ok := value.(bool); !ok {
			return []outcome.FieldError{{Path: spec.Key, Message: "must be a boolean"}}
		}
	case fieldNumber:
		n, ok := value.(float64)
		if !ok {
			return []outcome.FieldError{{Path: spec.Key, Message: "must be a number"}}
		}
		if n < spec.Min || n > spec.Max {
			return []outcome.FieldError{{Path: spec.Key,
				Message: fmt.Sprintf("must be between %g and %g", spec.Min, spec.Max)}}
		}
	case fieldTime:
		s, ok := value.(string)
		if !ok {
			return []outcome.FieldError{{Path: spec.Key, Message: "must be a string"}}
		}
		if !timeOfDay.MatchString(s) {
			return []outcome.FieldError{{Path: spec.Key, Message: "must be a time of day in HH:mm"}}
		}
	case fieldVitals:
		obj, ok := value.(map[string]interface{})
		if !ok {
			return []outcome.FieldError{{Path: spec.Key, Message: "must be an object"}}
		}
		var errs []outcome.FieldError
		for _, b := range vitalsBounds {
			v, present := obj[b.key]
			if !present {
				continue
			}
			path := spec.Key + "." + b.key
			n, ok := v.(float64)
			if !ok {
				errs = append(errs, outcome.FieldError{Path: path, Message: "must be a number"})
				continue
			}
			if n < b.min || n > b.max {
				errs = append(errs, outcome.FieldError{Path: path,
					Message: fmt.Sprintf("must be between %g and %g", b.min, b.max)})
			}
		}
		return errs
	}
	return nil
}

// ValidateDraft checks structural validity only. Missing fields are always
// acceptable in a draft; present fields must have the right shape.
func ValidateDraft(templateKey string, payload map[string]interface{}) []outcome.FieldError {
	t, ok := registry[templateKey]
	if !ok {
		return []outcome.FieldError{{Path: "templateKey", Message: "unknown form template"}}
	}

	var errs []outcome.FieldError
	for _, spec := range t.Fields {
		value, present := payload[spec.Key]
		if !present || value == nil {
			continue
		}
		errs = append(errs, checkField(spec, value)...)
	}
	return errs
}

// ValidateFinal checks the strict schema: every required field present and
// well-formed, plus the template's conditional refinements. The context
// carries cross-document signals so the registry stays lookup-free.
func ValidateFinal(templateKey string, payload map[string]interface{}, ctx FinalContext) []outcome.FieldError {
	t, ok := registry[templateKey]
	if !ok {
		return []outcome.FieldError{{Path: "templateKey", Message: "unknown form template"}}
	}

	var errs []outcome.FieldError
	for _, spec := range t.Fields {
		value, present := payload[spec.Key]
		if !present || value == nil {
			if spec.Required {
				errs = append(errs, outcome.FieldError{Path: spec.Key, Message: "is required"})
			}
			continue
		}
		if spec.Required && spec.Type == fieldString {
			if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
				errs = append(errs, outcome.FieldError{Path: spec.Key, Message: "is required"})
				continue
			}
		}
		errs = append(errs, checkField(spec, value)...)
	}
	if t.refine != nil {
		errs = append(errs, t.refine(payload, ctx)...)
	}
	return errs
}
