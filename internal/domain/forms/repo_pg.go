package forms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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

type formRepoPG struct{ pool *pgxpool.Pool }

func NewFormRepoPG(pool *pgxpool.Pool) FormRepository { return &formRepoPG{pool: pool} }

func (r *formRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const formCols = `id, surgical_case_id, template_key, template_version, status, data, signed_by_user_id, signed_at, created_at, updated_at`

func scanForm(row pgx.Row) (*ClinicalFormResponse, error) {
	var f ClinicalFormResponse
	var data []byte
	err := row.Scan(&f.ID, &f.SurgicalCaseID, &f.TemplateKey, &f.TemplateVersion, &f.Status,
		&data, &f.SignedByUserID, &f.SignedAt, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &f.Data); err != nil {
			return nil, fmt.Errorf("%w: form %s: %v", ErrCorruptPayload, f.ID, err)
		}
	}
	if f.Data == nil {
		f.Data = map[string]interface{}{}
	}
	return &f, nil
}

func (r *formRepoPG) Create(ctx context.Context, f *ClinicalFormResponse) error {
	f.ID = uuid.New()
	data, err := json.Marshal(f.Data)
	if err != nil {
		return err
	}
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO clinical_form_response (id, surgical_case_id, template_key, template_version, status, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		f.ID, f.SurgicalCaseID, f.TemplateKey, f.TemplateVersion, f.Status, data)
	return row.Scan(&f.CreatedAt, &f.UpdatedAt)
}

func (r *formRepoPG) Get(ctx context.Context, caseID uuid.UUID, templateKey string, version int) (*ClinicalFormResponse, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT `+formCols+` FROM clinical_form_response
		WHERE surgical_case_id = $1 AND template_key = $2 AND template_version = $3`,
		caseID, templateKey, version)
	f, err := scanForm(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

func (r *formRepoPG) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*ClinicalFormResponse, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+formCols+` FROM clinical_form_response
		WHERE surgical_case_id = $1 ORDER BY template_key, template_version`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*ClinicalFormResponse{}
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *formRepoPG) UpdateData(ctx context.Context, id uuid.UUID, data map[string]interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE clinical_form_response SET data = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'draft'`, id, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyFinal
	}
	return nil
}

func (r *formRepoPG) MarkFinal(ctx context.Context, id uuid.UUID, signedBy uuid.UUID) error {
	// The status guard makes the draft-to-final edge atomic: of two
	// concurrent finalizers, one matches zero rows.
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE clinical_form_response
		SET status = 'final', signed_by_user_id = $2, signed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'draft'`, id, signedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyFinal
	}
	return nil
}

type recordRepoPG struct{ pool *pgxpool.Pool }

func NewProcedureRecordRepoPG(pool *pgxpool.Pool) ProcedureRecordRepository {
	return &recordRepoPG{pool: pool}
}

func (r *recordRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *recordRepoPG) UpsertForCase(ctx context.Context, rec *SurgicalProcedureRecord) error {
	rec.ID = uuid.New()
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO surgical_procedure_record
			(id, surgical_case_id, diagnosis, procedure_performed, findings, surgeon_name,
			 assistant_names, anesthetist_name, source_form_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (surgical_case_id) DO UPDATE SET
			diagnosis = EXCLUDED.diagnosis,
			procedure_performed = EXCLUDED.procedure_performed,
			findings = EXCLUDED.findings,
			surgeon_name = EXCLUDED.surgeon_name,
			assistant_names = EXCLUDED.assistant_names,
			anesthetist_name = EXCLUDED.anesthetist_name,
			source_form_id = EXCLUDED.source_form_id,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		rec.ID, rec.SurgicalCaseID, rec.Diagnosis, rec.ProcedurePerformed, rec.Findings,
		rec.SurgeonName, rec.AssistantNames, rec.AnesthetistName, rec.SourceFormID)
	return row.Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
}

func (r *recordRepoPG) GetByCase(ctx context.Context, caseID uuid.UUID) (*SurgicalProcedureRecord, error) {
	var rec SurgicalProcedureRecord
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, surgical_case_id, diagnosis, procedure_performed, findings, surgeon_name,
			assistant_names, anesthetist_name, source_form_id, created_at, updated_at
		FROM surgical_procedure_record WHERE surgical_case_id = $1`, caseID).
		Scan(&rec.ID, &rec.SurgicalCaseID, &rec.Diagnosis, &rec.ProcedurePerformed, &rec.Findings,
			&rec.SurgeonName, &rec.AssistantNames, &rec.AnesthetistName, &rec.SourceFormID,
			&rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
