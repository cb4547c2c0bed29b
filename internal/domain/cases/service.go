package cases

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/surgiflow/surgiflow/internal/domain/audit"
	"github.com/surgiflow/surgiflow/pkg/outcome"
)

// Actor is the authenticated clinician performing an operation.
type Actor struct {
	ID    string
	Roles []string
}

func (a Actor) isAdmin() bool {
	for _, r := range a.Roles {
		if r == "admin" {
			return true
		}
	}
	return false
}

// ReadinessChecker answers whether a case has cleared its pre-operative
// checklist. Implemented by the planning service.
type ReadinessChecker interface {
	CaseReadiness(ctx context.Context, caseID uuid.UUID) (ready bool, missing []string, err error)
}

// RecoveryGate reports the outstanding blockers that keep a case from
// leaving theatre. Implemented by the forms service.
type RecoveryGate interface {
	RecoveryBlockers(ctx context.Context, caseID uuid.UUID) ([]string, error)
}

// Auditor records workflow events. Implemented by the audit service.
type Auditor interface {
	Record(ctx context.Context, actorID, entityType string, entityID uuid.UUID, action string, metadata map[string]interface{})
}

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo      Repository
	bookings  BookingRepository
	invites   InviteRepository
	readiness ReadinessChecker
	gate      RecoveryGate
	auditor   Auditor
	tx        TxRunner
	logger    zerolog.Logger
}

func NewService(repo Repository, bookings BookingRepository, invites InviteRepository,
	readiness ReadinessChecker, gate RecoveryGate, auditor Auditor, tx TxRunner, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		bookings:  bookings,
		invites:   invites,
		readiness: readiness,
		gate:      gate,
		auditor:   auditor,
		tx:        tx,
		logger:    logger,
	}
}

// BindGates wires the readiness and recovery collaborators after
// construction. Planning and forms need the case service to exist before
// they can be built, so the gates arrive late.
func (s *Service) BindGates(readiness ReadinessChecker, gate RecoveryGate) {
	s.readiness = readiness
	s.gate = gate
}

// CreateCase opens a new case in draft.
func (s *Service) CreateCase(ctx context.Context, actor Actor, c *SurgicalCase) error {
	if c.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if c.PrimarySurgeonID == uuid.Nil {
		return fmt.Errorf("primary_surgeon_id is required")
	}
	if c.Urgency == "" {
		c.Urgency = "elective"
	}
	if !validUrgencies[c.Urgency] {
		return fmt.Errorf("invalid urgency: %s", c.Urgency)
	}
	c.Status = StatusDraft
	c.CancelReason = nil

	if err := s.repo.Create(ctx, c); err != nil {
		return fmt.Errorf("create case: %w", err)
	}
	s.auditor.Record(ctx, actor.ID, audit.EntitySurgicalCase, c.ID, audit.ActionCreate,
		map[string]interface{}{"status": c.Status, "urgency": c.Urgency})
	return nil
}

func (s *Service) GetCase(ctx context.Context, id uuid.UUID) (*SurgicalCase, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListCases(ctx context.Context, filter ListFilter, limit, offset int) ([]*SurgicalCase, int, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// CanActOnCase reports whether the actor may act on the case: admins, the
// primary surgeon, and clinicians with an accepted invite qualify.
func (s *Service) CanActOnCase(ctx context.Context, actor Actor, c *SurgicalCase) (bool, error) {
	if actor.isAdmin() {
		return true, nil
	}
	if c.PrimarySurgeonID.String() == actor.ID {
		return true, nil
	}
	userID, err := uuid.Parse(actor.ID)
	if err != nil {
		return false, nil
	}
	return s.invites.HasAccepted(ctx, c.ID, userID)
}

// Transition moves a case along the lifecycle graph. Authorization is
// checked before edge validity, so an unauthorized actor learns nothing
// about whether the move would have been legal. Gate checks run after
// validity: readiness for ready-for-scheduling, a theatre booking for
// scheduled, and recovery blockers for recovery. Cancellation requires a
// reason and is allowed from any non-terminal status.
func (s *Service) Transition(ctx context.Context, actor Actor, caseID uuid.UUID, target string, reason string) (outcome.Result, error) {
	if !validCaseStatuses[target] {
		return outcome.Validation([]outcome.FieldError{{Path: "target", Message: fmt.Sprintf("unknown status: %s", target)}}), nil
	}

	c, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return outcome.Result{}, err
	}
	if c == nil {
		return outcome.NotFound("case not found"), nil
	}

	if target == StatusInTheatre {
		allowed, err := s.CanActOnCase(ctx, actor, c)
		if err != nil {
			return outcome.Result{}, err
		}
		if !allowed {
			return outcome.Forbidden("only the primary surgeon or an accepted invitee may start theatre"), nil
		}
	}

	if !CanTransition(c.Status, target) {
		return outcome.Conflict(fmt.Sprintf("cannot move case from %s to %s", c.Status, target)), nil
	}

	switch target {
	case StatusReadyForScheduling:
		ready, missing, err := s.readiness.CaseReadiness(ctx, caseID)
		if err != nil {
			return outcome.Result{}, err
		}
		if !ready {
			return outcome.ValidationMissing("case is not ready for scheduling", missing), nil
		}
	case StatusScheduled:
		booking, err := s.bookings.GetByCase(ctx, caseID)
		if err != nil {
			return outcome.Result{}, err
		}
		if booking == nil {
			return outcome.Conflict("case has no theatre booking"), nil
		}
	case StatusRecovery:
		blockers, err := s.gate.RecoveryBlockers(ctx, caseID)
		if err != nil {
			return outcome.Result{}, err
		}
		if len(blockers) > 0 {
			return outcome.ValidationMissing("case cannot leave theatre", blockers), nil
		}
	case StatusCancelled:
		if reason == "" {
			return outcome.Validation([]outcome.FieldError{{Path: "reason", Message: "cancellation reason is required"}}), nil
		}
	}

	var cancelReason *string
	if target == StatusCancelled {
		cancelReason = &reason
	}
	from := c.Status

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateStatus(ctx, caseID, target, cancelReason); err != nil {
			return err
		}
		meta := map[string]interface{}{"from": from, "to": target}
		if cancelReason != nil {
			meta["reason"] = *cancelReason
		}
		s.auditor.Record(ctx, actor.ID, audit.EntitySurgicalCase, caseID, audit.ActionStatusTransition, meta)
		return nil
	})
	if err != nil {
		return outcome.Result{}, fmt.Errorf("transition case: %w", err)
	}

	c.Status = target
	c.CancelReason = cancelReason
	s.logger.Info().
		Str("case_id", caseID.String()).
		Str("from", from).
		Str("to", target).
		Msg("case status transition")
	return outcome.OKWithStatus(c, target), nil
}

// MarkPlanning advances a draft case to planning. The move is implicit when
// planning work starts, so it is idempotent: cases already past draft are
// left alone.
func (s *Service) MarkPlanning(ctx context.Context, actorID string, caseID uuid.UUID) error {
	c, err := s.repo.GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("case not found")
	}
	if c.Status != StatusDraft {
		return nil
	}
	if err := s.repo.UpdateStatus(ctx, caseID, StatusPlanning, nil); err != nil {
		return err
	}
	s.auditor.Record(ctx, actorID, audit.EntitySurgicalCase, caseID, audit.ActionStatusTransition,
		map[string]interface{}{"from": StatusDraft, "to": StatusPlanning, "auto": true})
	return nil
}

// CreateBooking attaches a theatre booking to the case.
func (s *Service) CreateBooking(ctx context.Context, actor Actor, b *TheatreBooking) error {
	if b.SurgicalCaseID == uuid.Nil {
		return fmt.Errorf("surgical_case_id is required")
	}
	if b.TheatreName == "" {
		return fmt.Errorf("theatre_name is required")
	}
	if b.ScheduledDate.IsZero() {
		return fmt.Errorf("scheduled_date is required")
	}
	c, err := s.repo.GetByID(ctx, b.SurgicalCaseID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("case not found")
	}
	if IsTerminal(c.Status) {
		return fmt.Errorf("case is %s", c.Status)
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	s.auditor.Record(ctx, actor.ID, audit.EntityTheatreBooking, b.ID, audit.ActionCreate,
		map[string]interface{}{"surgical_case_id": b.SurgicalCaseID.String(), "theatre_name": b.TheatreName})
	return nil
}

func (s *Service) GetBooking(ctx context.Context, caseID uuid.UUID) (*TheatreBooking, error) {
	return s.bookings.GetByCase(ctx, caseID)
}

// CreateInvite invites a clinician onto the case team.
func (s *Service) CreateInvite(ctx context.Context, actor Actor, inv *StaffInvite) error {
	if inv.SurgicalCaseID == uuid.Nil {
		return fmt.Errorf("surgical_case_id is required")
	}
	if inv.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if !validInviteRoles[inv.InvitedRole] {
		return fmt.Errorf("invalid invited_role: %s", inv.InvitedRole)
	}
	c, err := s.repo.GetByID(ctx, inv.SurgicalCaseID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("case not found")
	}
	if IsTerminal(c.Status) {
		return fmt.Errorf("case is %s", c.Status)
	}
	inv.Status = InvitePending
	if err := s.invites.Create(ctx, inv); err != nil {
		return fmt.Errorf("create invite: %w", err)
	}
	s.auditor.Record(ctx, actor.ID, audit.EntityStaffInvite, inv.ID, audit.ActionCreate,
		map[string]interface{}{"surgical_case_id": inv.SurgicalCaseID.String(), "invited_role": inv.InvitedRole})
	return nil
}

func (s *Service) ListInvites(ctx context.Context, caseID uuid.UUID) ([]*StaffInvite, error) {
	return s.invites.ListByCase(ctx, caseID)
}

// RespondInvite lets the invited clinician accept or decline. Only the
// invitee may respond, and only while the invite is pending.
func (s *Service) RespondInvite(ctx context.Context, actor Actor, inviteID uuid.UUID, accept bool) (outcome.Result, error) {
	inv, err := s.invites.GetByID(ctx, inviteID)
	if err != nil {
		return outcome.Result{}, err
	}
	if inv == nil {
		return outcome.NotFound("invite not found"), nil
	}
	if inv.UserID.String() != actor.ID {
		return outcome.Forbidden("only the invited clinician may respond"), nil
	}
	if inv.Status != InvitePending {
		return outcome.Conflict(fmt.Sprintf("invite already %s", inv.Status)), nil
	}

	status := InviteDeclined
	if accept {
		status = InviteAccepted
	}
	if err := s.invites.UpdateStatus(ctx, inviteID, status); err != nil {
		return outcome.Result{}, err
	}
	s.auditor.Record(ctx, actor.ID, audit.EntityStaffInvite, inviteID, audit.ActionUpdate,
		map[string]interface{}{"status": status})
	inv.Status = status
	return outcome.OK(inv), nil
}
