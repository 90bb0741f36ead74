package attendance

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists attendances and their status history.
type Repository interface {
	Create(ctx context.Context, a *Attendance) error
	GetByID(ctx context.Context, id uuid.UUID) (*Attendance, error)
	// UpdateStatus writes the new disposition and the history row in one
	// transaction.
	UpdateStatus(ctx context.Context, a *Attendance, h *StatusHistory) error
	ListStatusHistory(ctx context.Context, attendanceID uuid.UUID) ([]StatusHistory, error)
	// StatusesByIDs returns the current status for each known id. Unknown
	// ids are simply absent from the result.
	StatusesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Status, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Attendance, error)
}
