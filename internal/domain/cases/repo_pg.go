package cases

import (
	"context"
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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const caseCols = `id, patient_id, primary_surgeon_id, consultation_id, status, urgency, cancel_reason, note, created_at, updated_at`

func scanCase(row pgx.Row) (*SurgicalCase, error) {
	var c SurgicalCase
	err := row.Scan(&c.ID, &c.PatientID, &c.PrimarySurgeonID, &c.ConsultationID,
		&c.Status, &c.Urgency, &c.CancelReason, &c.Note, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repoPG) Create(ctx context.Context, c *SurgicalCase) error {
	c.ID = uuid.New()
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO surgical_case (id, patient_id, primary_surgeon_id, consultation_id, status, urgency, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		c.ID, c.PatientID, c.PrimarySurgeonID, c.ConsultationID, c.Status, c.Urgency, c.Note)
	return row.Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*SurgicalCase, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+caseCols+` FROM surgical_case WHERE id = $1`, id)
	c, err := scanCase(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *repoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*SurgicalCase, int, error) {
	where := "1=1"
	args := []interface{}{}
	idx := 1
	if filter.PatientID != uuid.Nil {
		where += fmt.Sprintf(" AND patient_id = $%d", idx)
		args = append(args, filter.PatientID)
		idx++
	}
	if filter.SurgeonID != uuid.Nil {
		where += fmt.Sprintf(" AND primary_surgeon_id = $%d", idx)
		args = append(args, filter.SurgeonID)
		idx++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, filter.Status)
		idx++
	}
	if filter.Urgency != "" {
		where += fmt.Sprintf(" AND urgency = $%d", idx)
		args = append(args, filter.Urgency)
		idx++
	}

	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM surgical_case WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+caseCols+` FROM surgical_case WHERE `+where+
		` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []*SurgicalCase{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string, cancelReason *string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE surgical_case SET status = $2, cancel_reason = $3, updated_at = NOW()
		WHERE id = $1`, id, status, cancelReason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type bookingRepoPG struct{ pool *pgxpool.Pool }

func NewBookingRepoPG(pool *pgxpool.Pool) BookingRepository { return &bookingRepoPG{pool: pool} }

func (r *bookingRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *bookingRepoPG) Create(ctx context.Context, b *TheatreBooking) error {
	b.ID = uuid.New()
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO theatre_booking (id, surgical_case_id, theatre_name, scheduled_date, scheduled_start, scheduled_end, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		b.ID, b.SurgicalCaseID, b.TheatreName, b.ScheduledDate, b.ScheduledStart, b.ScheduledEnd, b.Note)
	return row.Scan(&b.CreatedAt)
}

func (r *bookingRepoPG) GetByCase(ctx context.Context, caseID uuid.UUID) (*TheatreBooking, error) {
	var b TheatreBooking
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, surgical_case_id, theatre_name, scheduled_date, scheduled_start, scheduled_end, note, created_at
		FROM theatre_booking WHERE surgical_case_id = $1
		ORDER BY created_at DESC LIMIT 1`, caseID).
		Scan(&b.ID, &b.SurgicalCaseID, &b.TheatreName, &b.ScheduledDate, &b.ScheduledStart, &b.ScheduledEnd, &b.Note, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

type inviteRepoPG struct{ pool *pgxpool.Pool }

func NewInviteRepoPG(pool *pgxpool.Pool) InviteRepository { return &inviteRepoPG{pool: pool} }

func (r *inviteRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const inviteCols = `id, surgical_case_id, user_id, invited_role, status, responded_at, created_at`

func scanInvite(row pgx.Row) (*StaffInvite, error) {
	var inv StaffInvite
	err := row.Scan(&inv.ID, &inv.SurgicalCaseID, &inv.UserID, &inv.InvitedRole,
		&inv.Status, &inv.RespondedAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *inviteRepoPG) Create(ctx context.Context, inv *StaffInvite) error {
	inv.ID = uuid.New()
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO staff_invite (id, surgical_case_id, user_id, invited_role, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		inv.ID, inv.SurgicalCaseID, inv.UserID, inv.InvitedRole, inv.Status)
	return row.Scan(&inv.CreatedAt)
}

func (r *inviteRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*StaffInvite, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+inviteCols+` FROM staff_invite WHERE id = $1`, id)
	inv, err := scanInvite(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return inv, err
}

func (r *inviteRepoPG) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*StaffInvite, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+inviteCols+` FROM staff_invite WHERE surgical_case_id = $1 ORDER BY created_at`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*StaffInvite{}
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *inviteRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff_invite SET status = $2, responded_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *inviteRepoPG) HasAccepted(ctx context.Context, caseID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM staff_invite
			WHERE surgical_case_id = $1 AND user_id = $2 AND status = 'accepted'
		)`, caseID, userID).Scan(&exists)
	return exists, err
}
