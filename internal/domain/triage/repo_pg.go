package triage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/acutecare/triagem/internal/platform/apperr"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns the Postgres-backed triage repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const recordCols = `id, establishment_id, patient_id, attendance_id, triaged_by, chief_complaint,
	respiratory_rate, heart_rate, blood_pressure_sys, blood_pressure_dia, temperature,
	oxygen_saturation, pain_scale, discriminators, presentation, consciousness,
	calculated_priority, final_priority, reasoning, recommended_time, override_reason,
	triage_time, version, created_at, updated_at`

func scanRecord(row pgx.Row) (*TriageRecord, error) {
	var t TriageRecord
	err := row.Scan(&t.ID, &t.EstablishmentID, &t.PatientID, &t.AttendanceID, &t.TriagedBy, &t.ChiefComplaint,
		&t.VitalSigns.RespiratoryRate, &t.VitalSigns.HeartRate, &t.VitalSigns.BloodPressureSys,
		&t.VitalSigns.BloodPressureDia, &t.VitalSigns.Temperature,
		&t.VitalSigns.OxygenSaturation, &t.VitalSigns.PainScale, &t.Discriminators, &t.Presentation, &t.Consciousness,
		&t.CalculatedPriority, &t.FinalPriority, &t.Reasoning, &t.RecommendedTime, &t.OverrideReason,
		&t.TriageTime, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

func insertRecord(ctx context.Context, q queryable, t *TriageRecord) error {
	_, err := q.Exec(ctx, `
		INSERT INTO triage_record (id, establishment_id, patient_id, attendance_id, triaged_by, chief_complaint,
			respiratory_rate, heart_rate, blood_pressure_sys, blood_pressure_dia, temperature,
			oxygen_saturation, pain_scale, discriminators, presentation, consciousness,
			calculated_priority, final_priority, reasoning, recommended_time, override_reason,
			triage_time, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)`,
		t.ID, t.EstablishmentID, t.PatientID, t.AttendanceID, t.TriagedBy, t.ChiefComplaint,
		t.VitalSigns.RespiratoryRate, t.VitalSigns.HeartRate, t.VitalSigns.BloodPressureSys,
		t.VitalSigns.BloodPressureDia, t.VitalSigns.Temperature,
		t.VitalSigns.OxygenSaturation, t.VitalSigns.PainScale, t.Discriminators, t.Presentation, t.Consciousness,
		t.CalculatedPriority, t.FinalPriority, t.Reasoning, t.RecommendedTime, t.OverrideReason,
		t.TriageTime, t.Version, t.CreatedAt, t.UpdatedAt)
	return err
}

func insertReEvaluation(ctx context.Context, q queryable, e *ReEvaluation) error {
	_, err := q.Exec(ctx, `
		INSERT INTO triage_reevaluation (id, triage_record_id, old_priority, new_priority, reason, actor_id, changed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, e.TriageRecordID, e.OldPriority, e.NewPriority, e.Reason, e.ActorID, e.ChangedAt)
	return err
}

func (r *repoPG) Create(ctx context.Context, t *TriageRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperr.Infrastructure("begin create triage record", err)
	}
	defer tx.Rollback(ctx)

	if err := insertRecord(ctx, tx, t); err != nil {
		return apperr.Infrastructure("insert triage record", err)
	}
	for _, e := range t.ReEvaluations {
		if err := insertReEvaluation(ctx, tx, e); err != nil {
			return apperr.Infrastructure("insert triage re-evaluation", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.Infrastructure("commit create triage record", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*TriageRecord, error) {
	t, err := scanRecord(r.pool.QueryRow(ctx, `SELECT `+recordCols+` FROM triage_record WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("triage record", id.String())
		}
		return nil, apperr.Infrastructure("get triage record", err)
	}
	return t, nil
}

func (r *repoPG) ListReEvaluations(ctx context.Context, recordID uuid.UUID) ([]*ReEvaluation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, triage_record_id, old_priority, new_priority, reason, actor_id, changed_at
		FROM triage_reevaluation WHERE triage_record_id = $1 ORDER BY changed_at, id`, recordID)
	if err != nil {
		return nil, apperr.Infrastructure("list triage re-evaluations", err)
	}
	defer rows.Close()

	var items []*ReEvaluation
	for rows.Next() {
		var e ReEvaluation
		if err := rows.Scan(&e.ID, &e.TriageRecordID, &e.OldPriority, &e.NewPriority, &e.Reason, &e.ActorID, &e.ChangedAt); err != nil {
			return nil, apperr.Infrastructure("scan triage re-evaluation", err)
		}
		items = append(items, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Infrastructure("iterate triage re-evaluations", err)
	}
	return items, nil
}

// ApplyReEvaluation commits the priority change and its history entry in one
// transaction. The UPDATE is guarded by the version the caller read; losing
// the race yields a ConflictError so the caller can retry with fresh data.
func (r *repoPG) ApplyReEvaluation(ctx context.Context, t *TriageRecord, entry *ReEvaluation) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperr.Infrastructure("begin re-evaluation", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE triage_record
		SET final_priority = $2, override_reason = $3, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $4`,
		t.ID, t.FinalPriority, t.OverrideReason, t.Version)
	if err != nil {
		return apperr.Infrastructure("update triage record", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM triage_record WHERE id = $1)`, t.ID).Scan(&exists); err != nil {
			return apperr.Infrastructure("check triage record", err)
		}
		if !exists {
			return apperr.NotFound("triage record", t.ID.String())
		}
		return apperr.Conflict("triage record", t.ID.String())
	}

	if err := insertReEvaluation(ctx, tx, entry); err != nil {
		return apperr.Infrastructure("insert triage re-evaluation", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.Infrastructure("commit re-evaluation", err)
	}

	t.Version++
	t.UpdatedAt = entry.ChangedAt
	return nil
}

func (r *repoPG) ListSince(ctx context.Context, establishmentID *uuid.UUID, since time.Time) ([]*TriageRecord, error) {
	query := `SELECT ` + recordCols + ` FROM triage_record WHERE triage_time >= $1`
	args := []interface{}{since}
	if establishmentID != nil {
		query += ` AND establishment_id = $2`
		args = append(args, *establishmentID)
	}
	query += ` ORDER BY triage_time, created_at, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Infrastructure("list triage records", err)
	}
	defer rows.Close()

	var items []*TriageRecord
	for rows.Next() {
		t, err := scanRecord(rows)
		if err != nil {
			return nil, apperr.Infrastructure("scan triage record", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Infrastructure("iterate triage records", err)
	}
	return items, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*TriageRecord, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM triage_record WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, apperr.Infrastructure("count triage records", err)
	}
	rows, err := r.pool.Query(ctx, `SELECT `+recordCols+` FROM triage_record
		WHERE patient_id = $1 ORDER BY triage_time DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, apperr.Infrastructure("list triage records by patient", err)
	}
	defer rows.Close()

	var items []*TriageRecord
	for rows.Next() {
		t, err := scanRecord(rows)
		if err != nil {
			return nil, 0, apperr.Infrastructure("scan triage record", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Infrastructure("iterate triage records", err)
	}
	return items, total, nil
}
