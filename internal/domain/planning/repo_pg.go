package planning

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/surgiflow/surgiflow/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type planRepoPG struct{ pool *pgxpool.Pool }

func NewPlanRepoPG(pool *pgxpool.Pool) PlanRepository { return &planRepoPG{pool: pool} }

func (r *planRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const planCols = `id, surgical_case_id, procedure_plan, risk_factors, planned_anesthesia, pre_op_notes,
	implant_details, special_instructions, estimated_duration_minutes, ready_for_surgery, created_at, updated_at`

func scanPlan(row pgx.Row) (*CasePlan, error) {
	var p CasePlan
	err := row.Scan(&p.ID, &p.SurgicalCaseID, &p.ProcedurePlan, &p.RiskFactors, &p.PlannedAnesthesia,
		&p.PreOpNotes, &p.ImplantDetails, &p.SpecialInstructions, &p.EstimatedDurationMinutes,
		&p.ReadyForSurgery, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *planRepoPG) Create(ctx context.Context, p *CasePlan) error {
	p.ID = uuid.New()
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO case_plan (id, surgical_case_id, procedure_plan, risk_factors, planned_anesthesia,
			pre_op_notes, implant_details, special_instructions, estimated_duration_minutes, ready_for_surgery)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		p.ID, p.SurgicalCaseID, p.ProcedurePlan, p.RiskFactors, p.PlannedAnesthesia,
		p.PreOpNotes, p.ImplantDetails, p.SpecialInstructions, p.EstimatedDurationMinutes, p.ReadyForSurgery)
	return row.Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *planRepoPG) GetByCase(ctx context.Context, caseID uuid.UUID) (*CasePlan, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+planCols+` FROM case_plan WHERE surgical_case_id = $1`, caseID)
	p, err := scanPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *planRepoPG) Update(ctx context.Context, p *CasePlan) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE case_plan SET procedure_plan = $2, risk_factors = $3, planned_anesthesia = $4,
			pre_op_notes = $5, implant_details = $6, special_instructions = $7,
			estimated_duration_minutes = $8, ready_for_surgery = $9, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.ProcedurePlan, p.RiskFactors, p.PlannedAnesthesia, p.PreOpNotes,
		p.ImplantDetails, p.SpecialInstructions, p.EstimatedDurationMinutes, p.ReadyForSurgery)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type consentRepoPG struct{ pool *pgxpool.Pool }

func NewConsentRepoPG(pool *pgxpool.Pool) ConsentRepository { return &consentRepoPG{pool: pool} }

func (r *consentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const consentCols = `id, surgical_case_id, title, content, status, signed_by_user_id, signed_at, created_at`

func scanConsent(row pgx.Row) (*ConsentForm, error) {
	var f ConsentForm
	err := row.Scan(&f.ID, &f.SurgicalCaseID, &f.Title, &f.Content, &f.Status,
		&f.SignedByUserID, &f.SignedAt, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *consentRepoPG) Create(ctx context.Context, f *ConsentForm) error {
	f.ID = uuid.New()
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO consent_form (id, surgical_case_id, title, content, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		f.ID, f.SurgicalCaseID, f.Title, f.Content, f.Status)
	return row.Scan(&f.CreatedAt)
}

func (r *consentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ConsentForm, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+consentCols+` FROM consent_form WHERE id = $1`, id)
	f, err := scanConsent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

func (r *consentRepoPG) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*ConsentForm, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+consentCols+` FROM consent_form WHERE surgical_case_id = $1 ORDER BY created_at`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*ConsentForm{}
	for rows.Next() {
		f, err := scanConsent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *consentRepoPG) MarkSigned(ctx context.Context, id uuid.UUID, signedBy uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE consent_form SET status = 'signed', signed_by_user_id = $2, signed_at = NOW()
		WHERE id = $1`, id, signedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *consentRepoPG) HasSigned(ctx context.Context, caseID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM consent_form WHERE surgical_case_id = $1 AND status = 'signed'
		)`, caseID).Scan(&exists)
	return exists, err
}

type imageRepoPG struct{ pool *pgxpool.Pool }

func NewImageRepoPG(pool *pgxpool.Pool) ImageRepository { return &imageRepoPG{pool: pool} }

func (r *imageRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *imageRepoPG) Create(ctx context.Context, img *PatientImage) error {
	img.ID = uuid.New()
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient_image (id, surgical_case_id, timepoint, url, caption, uploaded_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		img.ID, img.SurgicalCaseID, img.Timepoint, img.URL, img.Caption, img.UploadedByUserID)
	return row.Scan(&img.CreatedAt)
}

func (r *imageRepoPG) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*PatientImage, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, surgical_case_id, timepoint, url, caption, uploaded_by_user_id, created_at
		FROM patient_image WHERE surgical_case_id = $1 ORDER BY created_at`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*PatientImage{}
	for rows.Next() {
		var img PatientImage
		if err := rows.Scan(&img.ID, &img.SurgicalCaseID, &img.Timepoint, &img.URL,
			&img.Caption, &img.UploadedByUserID, &img.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &img)
	}
	return out, rows.Err()
}

func (r *imageRepoPG) HasTimepoint(ctx context.Context, caseID uuid.UUID, timepoint string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM patient_image WHERE surgical_case_id = $1 AND timepoint = $2
		)`, caseID, timepoint).Scan(&exists)
	return exists, err
}
