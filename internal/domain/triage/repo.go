package triage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence port for triage records.
//
// Create persists a new record together with any history entries already
// attached to it, atomically. ApplyReEvaluation performs a compare-and-swap
// on the record's Version: the final priority update and the history insert
// commit together or not at all, and a stale Version yields a ConflictError.
type Repository interface {
	Create(ctx context.Context, t *TriageRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*TriageRecord, error)
	ListReEvaluations(ctx context.Context, recordID uuid.UUID) ([]*ReEvaluation, error)
	ApplyReEvaluation(ctx context.Context, t *TriageRecord, entry *ReEvaluation) error
	ListSince(ctx context.Context, establishmentID *uuid.UUID, since time.Time) ([]*TriageRecord, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*TriageRecord, int, error)
}

// PatientDirectory resolves patient ids against the patient registry.
type PatientDirectory interface {
	Resolve(ctx context.Context, id uuid.UUID) (bool, error)
}

// DispositionSource reports the current disposition of attendances. The
// triage engine only reads these states; the attendance module owns them.
// Statuses are the lowercase tokens waiting, in_progress, completed,
// transferred.
type DispositionSource interface {
	StatusesByAttendance(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// DispositionWaiting is the only disposition under which a triaged
// attendance still belongs to the waiting queue.
const DispositionWaiting = "waiting"
