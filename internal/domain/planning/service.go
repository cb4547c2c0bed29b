package planning

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/surgiflow/surgiflow/internal/domain/audit"
	"github.com/surgiflow/surgiflow/pkg/outcome"
)

// CaseDirectory is the slice of the case service planning needs: existence
// and lifecycle checks plus the implicit draft-to-planning advance.
type CaseDirectory interface {
	CaseStatus(ctx context.Context, caseID uuid.UUID) (status string, found bool, err error)
	MarkPlanning(ctx context.Context, actorID string, caseID uuid.UUID) error
}

// Auditor records planning events.
type Auditor interface {
	Record(ctx context.Context, actorID, entityType string, entityID uuid.UUID, action string, metadata map[string]interface{})
}

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	plans    PlanRepository
	consents ConsentRepository
	images   ImageRepository
	cases    CaseDirectory
	auditor  Auditor
	tx       TxRunner
	logger   zerolog.Logger
}

func NewService(plans PlanRepository, consents ConsentRepository, images ImageRepository,
	cases CaseDirectory, auditor Auditor, tx TxRunner, logger zerolog.Logger) *Service {
	return &Service{
		plans:    plans,
		consents: consents,
		images:   images,
		cases:    cases,
		auditor:  auditor,
		tx:       tx,
		logger:   logger,
	}
}

// PlanInput carries a partial plan update. Nil fields are left untouched.
type PlanInput struct {
	ProcedurePlan            *string `json:"procedure_plan"`
	RiskFactors              *string `json:"risk_factors"`
	PlannedAnesthesia        *string `json:"planned_anesthesia"`
	PreOpNotes               *string `json:"pre_op_notes"`
	ImplantDetails           *string `json:"implant_details"`
	SpecialInstructions      *string `json:"special_instructions"`
	EstimatedDurationMinutes *int    `json:"estimated_duration_minutes"`
}

func (s *Service) checkCase(ctx context.Context, caseID uuid.UUID) (string, error) {
	status, found, err := s.cases.CaseStatus(ctx, caseID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("case not found")
	}
	if status == "completed" || status == "cancelled" {
		return "", fmt.Errorf("case is %s", status)
	}
	return status, nil
}

// UpsertPlan merges the input into the case plan, creating the plan on
// first touch. Editing a draft case implicitly advances it to planning.
// Readiness is recomputed and persisted after every change. The plan
// write, the audit entry, the status advance and the readiness flag all
// commit as one transaction.
func (s *Service) UpsertPlan(ctx context.Context, actorID string, caseID uuid.UUID, in PlanInput) (*CasePlan, error) {
	if _, err := s.checkCase(ctx, caseID); err != nil {
		return nil, err
	}
	if in.EstimatedDurationMinutes != nil && *in.EstimatedDurationMinutes <= 0 {
		return nil, fmt.Errorf("estimated_duration_minutes must be positive")
	}

	plan, err := s.plans.GetByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	created := plan == nil
	if created {
		plan = &CasePlan{SurgicalCaseID: caseID}
	}
	if in.ProcedurePlan != nil {
		plan.ProcedurePlan = in.ProcedurePlan
	}
	if in.RiskFactors != nil {
		plan.RiskFactors = in.RiskFactors
	}
	if in.PlannedAnesthesia != nil {
		plan.PlannedAnesthesia = in.PlannedAnesthesia
	}
	if in.PreOpNotes != nil {
		plan.PreOpNotes = in.PreOpNotes
	}
	if in.ImplantDetails != nil {
		plan.ImplantDetails = in.ImplantDetails
	}
	if in.SpecialInstructions != nil {
		plan.SpecialInstructions = in.SpecialInstructions
	}
	if in.EstimatedDurationMinutes != nil {
		plan.EstimatedDurationMinutes = in.EstimatedDurationMinutes
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if created {
			if err := s.plans.Create(ctx, plan); err != nil {
				return fmt.Errorf("create plan: %w", err)
			}
			s.auditor.Record(ctx, actorID, audit.EntityCasePlan, plan.ID, audit.ActionCreate,
				map[string]interface{}{"surgical_case_id": caseID.String()})
		} else {
			if err := s.plans.Update(ctx, plan); err != nil {
				return fmt.Errorf("update plan: %w", err)
			}
			s.auditor.Record(ctx, actorID, audit.EntityCasePlan, plan.ID, audit.ActionUpdate,
				map[string]interface{}{"surgical_case_id": caseID.String()})
		}

		if err := s.cases.MarkPlanning(ctx, actorID, caseID); err != nil {
			return err
		}
		_, err := s.recomputeReadiness(ctx, caseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.plans.GetByCase(ctx, caseID)
}

func (s *Service) GetPlan(ctx context.Context, caseID uuid.UUID) (*CasePlan, error) {
	return s.plans.GetByCase(ctx, caseID)
}

// Readiness evaluates the pre-operative checklist for a case.
func (s *Service) Readiness(ctx context.Context, caseID uuid.UUID) (Evaluation, error) {
	snap, err := s.snapshot(ctx, caseID)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluate(snap), nil
}

// CaseReadiness is the checklist answer in the shape the case lifecycle
// needs for its ready-for-scheduling gate.
func (s *Service) CaseReadiness(ctx context.Context, caseID uuid.UUID) (bool, []string, error) {
	ev, err := s.Readiness(ctx, caseID)
	if err != nil {
		return false, nil, err
	}
	return ev.Ready, ev.Missing, nil
}

func (s *Service) snapshot(ctx context.Context, caseID uuid.UUID) (Snapshot, error) {
	var snap Snapshot

	plan, err := s.plans.GetByCase(ctx, caseID)
	if err != nil {
		return snap, err
	}
	if plan != nil {
		snap.HasProcedurePlan = plan.ProcedurePlan != nil && *plan.ProcedurePlan != ""
		snap.HasRiskFactors = plan.RiskFactors != nil && *plan.RiskFactors != ""
		snap.HasAnesthesiaPlan = plan.PlannedAnesthesia != nil && *plan.PlannedAnesthesia != ""
	}

	snap.HasSignedConsent, err = s.consents.HasSigned(ctx, caseID)
	if err != nil {
		return snap, err
	}
	snap.HasPreOpPhoto, err = s.images.HasTimepoint(ctx, caseID, TimepointPreOp)
	if err != nil {
		return snap, err
	}
	return snap, nil
}

// recomputeReadiness re-runs the checklist and persists the flag on the
// plan so list views can filter on it without re-evaluating.
func (s *Service) recomputeReadiness(ctx context.Context, caseID uuid.UUID) (Evaluation, error) {
	snap, err := s.snapshot(ctx, caseID)
	if err != nil {
		return Evaluation{}, err
	}
	ev := Evaluate(snap)

	plan, err := s.plans.GetByCase(ctx, caseID)
	if err != nil {
		return ev, err
	}
	if plan != nil && plan.ReadyForSurgery != ev.Ready {
		plan.ReadyForSurgery = ev.Ready
		if err := s.plans.Update(ctx, plan); err != nil {
			return ev, err
		}
		s.logger.Info().
			Str("case_id", caseID.String()).
			Bool("ready", ev.Ready).
			Strs("missing", ev.Missing).
			Msg("case readiness changed")
	}
	return ev, nil
}

// AddConsent attaches a draft consent form to the case.
func (s *Service) AddConsent(ctx context.Context, actorID string, f *ConsentForm) error {
	if f.Title == "" {
		return fmt.Errorf("title is required")
	}
	if _, err := s.checkCase(ctx, f.SurgicalCaseID); err != nil {
		return err
	}
	f.Status = ConsentDraft
	f.SignedByUserID = nil
	f.SignedAt = nil
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.consents.Create(ctx, f); err != nil {
			return fmt.Errorf("create consent: %w", err)
		}
		s.auditor.Record(ctx, actorID, audit.EntityConsentForm, f.ID, audit.ActionCreate,
			map[string]interface{}{"surgical_case_id": f.SurgicalCaseID.String(), "title": f.Title})
		return nil
	})
}

func (s *Service) ListConsents(ctx context.Context, caseID uuid.UUID) ([]*ConsentForm, error) {
	return s.consents.ListByCase(ctx, caseID)
}

// SignConsent records the signature on a draft consent form. A consent can
// only be signed once. The signature, its audit entry and the readiness
// recompute commit as one transaction.
func (s *Service) SignConsent(ctx context.Context, actorID string, consentID uuid.UUID) (outcome.Result, error) {
	f, err := s.consents.GetByID(ctx, consentID)
	if err != nil {
		return outcome.Result{}, err
	}
	if f == nil {
		return outcome.NotFound("consent form not found"), nil
	}
	if f.Status == ConsentSigned {
		return outcome.Conflict("consent form is already signed"), nil
	}

	signedBy, err := uuid.Parse(actorID)
	if err != nil {
		return outcome.Forbidden("signer identity is not a known clinician"), nil
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.consents.MarkSigned(ctx, consentID, signedBy); err != nil {
			return err
		}
		s.auditor.Record(ctx, actorID, audit.EntityConsentForm, consentID, audit.ActionSign,
			map[string]interface{}{"surgical_case_id": f.SurgicalCaseID.String()})
		_, err := s.recomputeReadiness(ctx, f.SurgicalCaseID)
		return err
	})
	if err != nil {
		return outcome.Result{}, err
	}
	f, err = s.consents.GetByID(ctx, consentID)
	if err != nil {
		return outcome.Result{}, err
	}
	return outcome.OK(f), nil
}

// AddImage attaches a clinical photo to the case at a given timepoint.
func (s *Service) AddImage(ctx context.Context, actorID string, img *PatientImage) error {
	if !validTimepoints[img.Timepoint] {
		return fmt.Errorf("invalid timepoint: %s", img.Timepoint)
	}
	if img.URL == "" {
		return fmt.Errorf("url is required")
	}
	if _, err := s.checkCase(ctx, img.SurgicalCaseID); err != nil {
		return err
	}
	img.UploadedByUserID = actorID
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.images.Create(ctx, img); err != nil {
			return fmt.Errorf("create image: %w", err)
		}
		s.auditor.Record(ctx, actorID, audit.EntityPatientImage, img.ID, audit.ActionCreate,
			map[string]interface{}{"surgical_case_id": img.SurgicalCaseID.String(), "timepoint": img.Timepoint})

		if img.Timepoint == TimepointPreOp {
			if _, err := s.recomputeReadiness(ctx, img.SurgicalCaseID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) ListImages(ctx context.Context, caseID uuid.UUID) ([]*PatientImage, error) {
	return s.images.ListByCase(ctx, caseID)
}
