package forms

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/surgiflow/surgiflow/internal/domain/audit"
	"github.com/surgiflow/surgiflow/pkg/outcome"
)

// CaseAccess is the slice of the case service forms needs.
type CaseAccess interface {
	CaseStatus(ctx context.Context, caseID uuid.UUID) (status string, found bool, err error)
}

// Auditor records form events.
type Auditor interface {
	Record(ctx context.Context, actorID, entityType string, entityID uuid.UUID, action string, metadata map[string]interface{})
}

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	forms   FormRepository
	records ProcedureRecordRepository
	cases   CaseAccess
	auditor Auditor
	tx      TxRunner
	logger  zerolog.Logger
}

func NewService(forms FormRepository, records ProcedureRecordRepository, cases CaseAccess,
	auditor Auditor, tx TxRunner, logger zerolog.Logger) *Service {
	return &Service{
		forms:   forms,
		records: records,
		cases:   cases,
		auditor: auditor,
		tx:      tx,
		logger:  logger,
	}
}

// SaveDraft validates the payload against the lenient draft schema and
// creates or replaces the draft for (template, version, case). Finalized
// forms reject further saves.
func (s *Service) SaveDraft(ctx context.Context, actorID string, caseID uuid.UUID, templateKey string, payload map[string]interface{}) (outcome.Result, error) {
	t, ok := TemplateFor(templateKey)
	if !ok {
		return outcome.NotFound(fmt.Sprintf("unknown form template: %s", templateKey)), nil
	}

	status, found, err := s.cases.CaseStatus(ctx, caseID)
	if err != nil {
		return outcome.Result{}, err
	}
	if !found {
		return outcome.NotFound("case not found"), nil
	}
	if status == "completed" || status == "cancelled" {
		return outcome.Conflict(fmt.Sprintf("case is %s", status)), nil
	}

	if payload == nil {
		payload = map[string]interface{}{}
	}
	if errs := ValidateDraft(templateKey, payload); len(errs) > 0 {
		return outcome.Validation(errs), nil
	}

	form, err := s.forms.Get(ctx, caseID, templateKey, t.Version)
	if err != nil {
		return outcome.Result{}, err
	}

	if form == nil {
		form = &ClinicalFormResponse{
			SurgicalCaseID:  caseID,
			TemplateKey:     templateKey,
			TemplateVersion: t.Version,
			Status:          FormDraft,
			Data:            payload,
		}
		if err := s.forms.Create(ctx, form); err != nil {
			return outcome.Result{}, fmt.Errorf("create form: %w", err)
		}
		s.auditor.Record(ctx, actorID, audit.EntityClinicalForm, form.ID, audit.ActionCreate,
			map[string]interface{}{"surgical_case_id": caseID.String(), "template_key": templateKey})
		return outcome.OK(form), nil
	}

	if form.Status == FormFinal {
		return outcome.Conflict("form is already finalized"), nil
	}
	if err := s.forms.UpdateData(ctx, form.ID, payload); err != nil {
		if errors.Is(err, ErrAlreadyFinal) {
			return outcome.Conflict("form is already finalized"), nil
		}
		return outcome.Result{}, fmt.Errorf("update form: %w", err)
	}
	form.Data = payload
	s.auditor.Record(ctx, actorID, audit.EntityClinicalForm, form.ID, audit.ActionUpdate,
		map[string]interface{}{"surgical_case_id": caseID.String(), "template_key": templateKey})
	return outcome.OK(form), nil
}

// GetForm returns the form at the template's current version.
func (s *Service) GetForm(ctx context.Context, caseID uuid.UUID, templateKey string) (*ClinicalFormResponse, error) {
	t, ok := TemplateFor(templateKey)
	if !ok {
		return nil, fmt.Errorf("unknown form template: %s", templateKey)
	}
	return s.forms.Get(ctx, caseID, templateKey, t.Version)
}

func (s *Service) ListForms(ctx context.Context, caseID uuid.UUID) ([]*ClinicalFormResponse, error) {
	return s.forms.ListByCase(ctx, caseID)
}

// finalContext assembles the cross-document signals final validation needs.
// Only the operative note has one today: whether the case's intra-op record
// reports a count discrepancy.
func (s *Service) finalContext(ctx context.Context, caseID uuid.UUID, templateKey string) (FinalContext, error) {
	var fc FinalContext
	if templateKey != TemplateOperativeNote {
		return fc, nil
	}
	intraOp, ok := TemplateFor(TemplateIntraOpRecord)
	if !ok {
		return fc, nil
	}
	linked, err := s.forms.Get(ctx, caseID, TemplateIntraOpRecord, intraOp.Version)
	if err != nil {
		return fc, err
	}
	if linked != nil {
		fc.LinkedCountDiscrepancy = IntraOpFromPayload(linked.Data).CountDiscrepancy
	}
	return fc, nil
}

// Finalize runs strict validation and, on success, commits the status flip,
// the procedure-record snapshot (operative note only) and the audit entry
// as one transaction. An already-final form is rejected before anything is
// touched, and a finalizer that loses the race inside the status guard gets
// the same conflict, so double-signing cannot happen.
func (s *Service) Finalize(ctx context.Context, actorID string, caseID uuid.UUID, templateKey string) (outcome.Result, error) {
	t, ok := TemplateFor(templateKey)
	if !ok {
		return outcome.NotFound(fmt.Sprintf("unknown form template: %s", templateKey)), nil
	}

	form, err := s.forms.Get(ctx, caseID, templateKey, t.Version)
	if err != nil {
		if errors.Is(err, ErrCorruptPayload) {
			s.logger.Error().Err(err).
				Str("case_id", caseID.String()).
				Str("template_key", templateKey).
				Msg("stored form payload does not parse")
		}
		return outcome.Result{}, err
	}
	if form == nil {
		return outcome.NotFound("no draft to finalize"), nil
	}
	if form.Status == FormFinal {
		return outcome.Conflict("form is already finalized"), nil
	}

	fc, err := s.finalContext(ctx, caseID, templateKey)
	if err != nil {
		return outcome.Result{}, err
	}
	if errs := ValidateFinal(templateKey, form.Data, fc); len(errs) > 0 {
		return outcome.Validation(errs), nil
	}

	signedBy, parseErr := uuid.Parse(actorID)
	if parseErr != nil {
		return outcome.Forbidden("signer identity is not a known clinician"), nil
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.forms.MarkFinal(ctx, form.ID, signedBy); err != nil {
			return err
		}
		if templateKey == TemplateOperativeNote {
			rec := snapshotFromNote(caseID, form.ID, form.Data)
			if err := s.records.UpsertForCase(ctx, rec); err != nil {
				return err
			}
			s.auditor.Record(ctx, actorID, audit.EntityProcedureRecord, rec.ID, audit.ActionUpdate,
				map[string]interface{}{"surgical_case_id": caseID.String(), "source_form_id": form.ID.String()})
		}
		s.auditor.Record(ctx, actorID, audit.EntityClinicalForm, form.ID, audit.ActionFinalize,
			map[string]interface{}{"surgical_case_id": caseID.String(), "template_key": templateKey})
		return nil
	})
	if err != nil {
		// The guarded status flip lost to a concurrent finalizer.
		if errors.Is(err, ErrAlreadyFinal) {
			return outcome.Conflict("form is already finalized"), nil
		}
		return outcome.Result{}, fmt.Errorf("finalize form: %w", err)
	}

	s.logger.Info().
		Str("case_id", caseID.String()).
		Str("template_key", templateKey).
		Str("signed_by", actorID).
		Msg("clinical form finalized")
	return s.reload(ctx, caseID, templateKey, t.Version)
}

func (s *Service) reload(ctx context.Context, caseID uuid.UUID, templateKey string, version int) (outcome.Result, error) {
	form, err := s.forms.Get(ctx, caseID, templateKey, version)
	if err != nil {
		return outcome.Result{}, err
	}
	return outcome.OKWithStatus(form, FormFinal), nil
}

// RecoveryBlockers evaluates the safety gate over the case's intra-op
// record. A missing or still-draft record fails closed with its own reason
// on top of the flag checks.
func (s *Service) RecoveryBlockers(ctx context.Context, caseID uuid.UUID) ([]string, error) {
	intraOp, _ := TemplateFor(TemplateIntraOpRecord)
	form, err := s.forms.Get(ctx, caseID, TemplateIntraOpRecord, intraOp.Version)
	if err != nil {
		return nil, err
	}

	var rec IntraOpRecord
	var reasons []string
	if form == nil {
		reasons = append(reasons, "intra-op record has not been started")
	} else {
		if form.Status != FormFinal {
			reasons = append(reasons, "intra-op record is not finalized")
		}
		rec = IntraOpFromPayload(form.Data)
	}
	return append(reasons, EvaluateRecoveryGate(rec)...), nil
}

func (s *Service) GetProcedureRecord(ctx context.Context, caseID uuid.UUID) (*SurgicalProcedureRecord, error) {
	return s.records.GetByCase(ctx, caseID)
}
