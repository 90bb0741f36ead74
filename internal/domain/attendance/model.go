package attendance

import (
	"time"

	"github.com/google/uuid"
)

// Status is the disposition of an attendance. The triage engine reads these
// states to decide queue membership but never writes them.
type Status string

const (
	StatusWaiting     Status = "waiting"
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
	StatusTransferred Status = "transferred"
)

// allowedTransitions is the disposition state machine. Completed and
// transferred are terminal.
var allowedTransitions = map[Status][]Status{
	StatusWaiting:    {StatusInProgress, StatusTransferred},
	StatusInProgress: {StatusCompleted, StatusTransferred},
}

// Valid reports whether s is a known status token.
func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusInProgress, StatusCompleted, StatusTransferred:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine allows moving from s to
// next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Attendance is one patient encounter from arrival to disposition.
type Attendance struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	EstablishmentID *uuid.UUID `db:"establishment_id" json:"establishment_id,omitempty"`
	PatientID       uuid.UUID  `db:"patient_id" json:"patient_id"`
	AttendingID     *uuid.UUID `db:"attending_id" json:"attending_id,omitempty"`
	Status          Status     `db:"status" json:"status"`
	ArrivalTime     time.Time  `db:"arrival_time" json:"arrival_time"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	TransferDest    *string    `db:"transfer_dest" json:"transfer_dest,omitempty"`
	Note            *string    `db:"note" json:"note,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// StatusHistory is one audited disposition change.
type StatusHistory struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	AttendanceID uuid.UUID  `db:"attendance_id" json:"attendance_id"`
	FromStatus   Status     `db:"from_status" json:"from_status"`
	ToStatus     Status     `db:"to_status" json:"to_status"`
	ChangedBy    *uuid.UUID `db:"changed_by" json:"changed_by,omitempty"`
	Note         *string    `db:"note" json:"note,omitempty"`
	ChangedAt    time.Time  `db:"changed_at" json:"changed_at"`
}
