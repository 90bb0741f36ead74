package attendance

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/acutecare/triagem/internal/platform/apperr"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns the Postgres-backed attendance repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const attendanceCols = `id, establishment_id, patient_id, attending_id, status, arrival_time,
	completed_at, transfer_dest, note, created_at, updated_at`

func scanAttendance(row pgx.Row) (*Attendance, error) {
	var a Attendance
	err := row.Scan(&a.ID, &a.EstablishmentID, &a.PatientID, &a.AttendingID, &a.Status, &a.ArrivalTime,
		&a.CompletedAt, &a.TransferDest, &a.Note, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Attendance) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO attendance (id, establishment_id, patient_id, attending_id, status, arrival_time,
			completed_at, transfer_dest, note, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.ID, a.EstablishmentID, a.PatientID, a.AttendingID, a.Status, a.ArrivalTime,
		a.CompletedAt, a.TransferDest, a.Note, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return apperr.Infrastructure("insert attendance", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Attendance, error) {
	a, err := scanAttendance(r.pool.QueryRow(ctx, `SELECT `+attendanceCols+` FROM attendance WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("attendance", id.String())
		}
		return nil, apperr.Infrastructure("get attendance", err)
	}
	return a, nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, a *Attendance, h *StatusHistory) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperr.Infrastructure("begin status update", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE attendance
		SET status = $2, attending_id = $3, completed_at = $4, transfer_dest = $5, updated_at = NOW()
		WHERE id = $1`,
		a.ID, a.Status, a.AttendingID, a.CompletedAt, a.TransferDest)
	if err != nil {
		return apperr.Infrastructure("update attendance status", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("attendance", a.ID.String())
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO attendance_status_history (id, attendance_id, from_status, to_status, changed_by, note, changed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		h.ID, h.AttendanceID, h.FromStatus, h.ToStatus, h.ChangedBy, h.Note, h.ChangedAt)
	if err != nil {
		return apperr.Infrastructure("insert status history", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.Infrastructure("commit status update", err)
	}
	return nil
}

func (r *repoPG) ListStatusHistory(ctx context.Context, attendanceID uuid.UUID) ([]StatusHistory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, attendance_id, from_status, to_status, changed_by, note, changed_at
		FROM attendance_status_history WHERE attendance_id = $1 ORDER BY changed_at, id`, attendanceID)
	if err != nil {
		return nil, apperr.Infrastructure("list status history", err)
	}
	defer rows.Close()

	var items []StatusHistory
	for rows.Next() {
		var h StatusHistory
		if err := rows.Scan(&h.ID, &h.AttendanceID, &h.FromStatus, &h.ToStatus, &h.ChangedBy, &h.Note, &h.ChangedAt); err != nil {
			return nil, apperr.Infrastructure("scan status history", err)
		}
		items = append(items, h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Infrastructure("iterate status history", err)
	}
	return items, nil
}

func (r *repoPG) StatusesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Status, error) {
	result := make(map[uuid.UUID]Status, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, status FROM attendance WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, apperr.Infrastructure("list attendance statuses", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var s Status
		if err := rows.Scan(&id, &s); err != nil {
			return nil, apperr.Infrastructure("scan attendance status", err)
		}
		result[id] = s
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Infrastructure("iterate attendance statuses", err)
	}
	return result, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Attendance, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+attendanceCols+` FROM attendance
		WHERE patient_id = $1 ORDER BY arrival_time DESC`, patientID)
	if err != nil {
		return nil, apperr.Infrastructure("list attendances by patient", err)
	}
	defer rows.Close()

	var items []Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, apperr.Infrastructure("scan attendance", err)
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Infrastructure("iterate attendances", err)
	}
	return items, nil
}
