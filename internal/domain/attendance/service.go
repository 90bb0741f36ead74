package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/acutecare/triagem/internal/platform/apperr"
)

// PatientDirectory resolves patient ids against the patient registry.
type PatientDirectory interface {
	Resolve(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service owns the disposition state machine. Besides attendance CRUD it
// acts as the disposition source the triage queue filters against.
type Service struct {
	repo     Repository
	patients PatientDirectory
	now      func() time.Time
}

func NewService(repo Repository, patients PatientDirectory) *Service {
	return &Service{repo: repo, patients: patients, now: func() time.Time { return time.Now().UTC() }}
}

// CreateCommand opens a new attendance. Arrival defaults to now.
type CreateCommand struct {
	EstablishmentID *uuid.UUID
	PatientID       uuid.UUID
	ArrivalTime     *time.Time
	Note            *string
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Attendance, error) {
	if cmd.PatientID == uuid.Nil {
		return nil, apperr.Validation("patient_id", "is required")
	}
	if s.patients != nil {
		known, err := s.patients.Resolve(ctx, cmd.PatientID)
		if err != nil {
			return nil, err
		}
		if !known {
			return nil, apperr.NotFound("patient", cmd.PatientID.String())
		}
	}

	now := s.now()
	arrival := now
	if cmd.ArrivalTime != nil {
		arrival = cmd.ArrivalTime.UTC()
	}
	a := &Attendance{
		ID:              uuid.New(),
		EstablishmentID: cmd.EstablishmentID,
		PatientID:       cmd.PatientID,
		Status:          StatusWaiting,
		ArrivalTime:     arrival,
		Note:            cmd.Note,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Attendance, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Attendance, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) StatusHistory(ctx context.Context, id uuid.UUID) ([]StatusHistory, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListStatusHistory(ctx, id)
}

// ChangeStatusCommand moves an attendance to a new disposition.
type ChangeStatusCommand struct {
	Status       Status
	ChangedBy    *uuid.UUID
	AttendingID  *uuid.UUID
	TransferDest *string
	Note         *string
}

// ChangeStatus validates the transition against the state machine and
// appends a history row in the same transaction as the update.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, cmd ChangeStatusCommand) (*Attendance, error) {
	if !cmd.Status.Valid() {
		return nil, apperr.Validation("status", "unknown status "+string(cmd.Status))
	}
	if cmd.Status == StatusTransferred && (cmd.TransferDest == nil || *cmd.TransferDest == "") {
		return nil, apperr.Validation("transfer_dest", "is required for a transfer")
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Status.CanTransitionTo(cmd.Status) {
		return nil, apperr.Conflict("attendance status",
			string(a.Status)+" cannot move to "+string(cmd.Status))
	}

	now := s.now()
	from := a.Status
	a.Status = cmd.Status
	if cmd.AttendingID != nil {
		a.AttendingID = cmd.AttendingID
	}
	if cmd.Status == StatusCompleted || cmd.Status == StatusTransferred {
		a.CompletedAt = &now
	}
	if cmd.Status == StatusTransferred {
		a.TransferDest = cmd.TransferDest
	}
	a.UpdatedAt = now

	h := &StatusHistory{
		ID:           uuid.New(),
		AttendanceID: a.ID,
		FromStatus:   from,
		ToStatus:     cmd.Status,
		ChangedBy:    cmd.ChangedBy,
		Note:         cmd.Note,
		ChangedAt:    now,
	}
	if err := s.repo.UpdateStatus(ctx, a, h); err != nil {
		return nil, err
	}
	return a, nil
}

// StatusesByAttendance implements the triage engine's DispositionSource port.
func (s *Service) StatusesByAttendance(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	statuses, err := s.repo.StatusesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID]string, len(statuses))
	for id, st := range statuses {
		result[id] = string(st)
	}
	return result, nil
}
