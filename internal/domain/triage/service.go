package triage

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/acutecare/triagem/internal/platform/apperr"
)

// Service owns the triage record lifecycle: classification on creation,
// audited re-evaluation, and the waiting-queue views. All collaborators are
// injected; the service holds no mutable state of its own.
type Service struct {
	repo          Repository
	patients      PatientDirectory
	dispositions  DispositionSource
	defaultWindow time.Duration
	now           func() time.Time
}

func NewService(repo Repository, patients PatientDirectory, dispositions DispositionSource, defaultWindow time.Duration) *Service {
	if defaultWindow <= 0 {
		defaultWindow = 24 * time.Hour
	}
	return &Service{
		repo:          repo,
		patients:      patients,
		dispositions:  dispositions,
		defaultWindow: defaultWindow,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// CreateCommand carries everything needed to triage a presentation.
type CreateCommand struct {
	PatientID        uuid.UUID
	AttendanceID     *uuid.UUID
	EstablishmentID  *uuid.UUID
	TriagedBy        uuid.UUID
	Input            PresentationInput
	OverridePriority *PriorityLevel
	OverrideReason   string
}

// Create classifies the presentation and persists the resulting record.
// The classified priority is immutable from here on; an override at creation
// only moves FinalPriority and leaves an audit entry.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*TriageRecord, error) {
	if cmd.PatientID == uuid.Nil {
		return nil, apperr.Validation("patient_id", "is required")
	}
	if cmd.TriagedBy == uuid.Nil {
		return nil, apperr.Validation("triaged_by", "is required")
	}
	if cmd.Input.ChiefComplaint == "" {
		return nil, apperr.Validation("chief_complaint", "is required")
	}
	if len(cmd.Input.Discriminators) > MaxDiscriminators {
		return nil, apperr.Validation("discriminators", "at most 5 allowed")
	}
	if cmd.OverridePriority != nil {
		if !cmd.OverridePriority.Valid() {
			return nil, apperr.Validation("override_priority", "unknown priority level")
		}
		if cmd.OverrideReason == "" {
			return nil, apperr.Validation("override_reason", "is required when override_priority is set")
		}
	}

	exists, err := s.patients.Resolve(ctx, cmd.PatientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("patient", cmd.PatientID.String())
	}

	result := Classify(cmd.Input)
	now := s.now()

	rec := &TriageRecord{
		ID:                 uuid.New(),
		EstablishmentID:    cmd.EstablishmentID,
		PatientID:          cmd.PatientID,
		AttendanceID:       cmd.AttendanceID,
		TriagedBy:          cmd.TriagedBy,
		ChiefComplaint:     cmd.Input.ChiefComplaint,
		Discriminators:     cmd.Input.Discriminators,
		Presentation:       cmd.Input.Presentation,
		Consciousness:      cmd.Input.Consciousness,
		CalculatedPriority: result.Priority,
		FinalPriority:      result.Priority,
		Reasoning:          result.Reasoning,
		RecommendedTime:    result.RecommendedTime,
		TriageTime:         now,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if cmd.Input.VitalSigns != nil {
		rec.VitalSigns = *cmd.Input.VitalSigns
	}

	if cmd.OverridePriority != nil && *cmd.OverridePriority != result.Priority {
		reason := cmd.OverrideReason
		rec.FinalPriority = *cmd.OverridePriority
		rec.OverrideReason = &reason
		rec.ReEvaluations = append(rec.ReEvaluations, &ReEvaluation{
			ID:             uuid.New(),
			TriageRecordID: rec.ID,
			OldPriority:    result.Priority,
			NewPriority:    *cmd.OverridePriority,
			Reason:         reason,
			ActorID:        cmd.TriagedBy,
			ChangedAt:      now,
		})
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ReEvaluate changes a record's final priority with an audited reason.
// TriageTime and CalculatedPriority are never touched, so queue position
// within the new tier and the original classification stay defensible.
// A concurrent update surfaces as a ConflictError; callers re-read and retry.
func (s *Service) ReEvaluate(ctx context.Context, id uuid.UUID, newPriority PriorityLevel, reason string, actorID uuid.UUID) (*TriageRecord, error) {
	if !newPriority.Valid() {
		return nil, apperr.Validation("priority", "unknown priority level")
	}
	if reason == "" {
		return nil, apperr.Validation("reason", "is required")
	}
	if actorID == uuid.Nil {
		return nil, apperr.Validation("actor_id", "is required")
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entry := &ReEvaluation{
		ID:             uuid.New(),
		TriageRecordID: rec.ID,
		OldPriority:    rec.FinalPriority,
		NewPriority:    newPriority,
		Reason:         reason,
		ActorID:        actorID,
		ChangedAt:      s.now(),
	}

	rec.FinalPriority = newPriority
	if newPriority != rec.CalculatedPriority {
		rec.OverrideReason = &entry.Reason
	} else {
		rec.OverrideReason = nil
	}

	if err := s.repo.ApplyReEvaluation(ctx, rec, entry); err != nil {
		return nil, err
	}

	rec.ReEvaluations, err = s.repo.ListReEvaluations(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns a record with its ordered re-evaluation history.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*TriageRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.ReEvaluations, err = s.repo.ListReEvaluations(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListByPatient returns a patient's triage history, newest first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*TriageRecord, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// QueueFilter scopes a waiting-queue read.
type QueueFilter struct {
	EstablishmentID *uuid.UUID
	Window          time.Duration
}

// WaitingQueue computes the current queue on demand: records inside the
// window whose attendance (if any) is still waiting, ordered by final
// priority rank and then strictly FIFO on TriageTime. The sort is stable, so
// records with identical keys keep insertion order.
func (s *Service) WaitingQueue(ctx context.Context, filter QueueFilter) ([]*TriageRecord, error) {
	window := filter.Window
	if window <= 0 {
		window = s.defaultWindow
	}

	records, err := s.repo.ListSince(ctx, filter.EstablishmentID, s.now().Add(-window))
	if err != nil {
		return nil, err
	}

	waiting, err := s.filterWaiting(ctx, records)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(waiting, func(i, j int) bool {
		if waiting[i].FinalPriority.Rank() != waiting[j].FinalPriority.Rank() {
			return waiting[i].FinalPriority.Rank() < waiting[j].FinalPriority.Rank()
		}
		return waiting[i].TriageTime.Before(waiting[j].TriageTime)
	})
	return waiting, nil
}

// ObservationView is the red/orange subset of the waiting queue, in the same
// order.
func (s *Service) ObservationView(ctx context.Context, filter QueueFilter) ([]*TriageRecord, error) {
	queue, err := s.WaitingQueue(ctx, filter)
	if err != nil {
		return nil, err
	}
	observed := make([]*TriageRecord, 0, len(queue))
	for _, rec := range queue {
		if rec.FinalPriority == PriorityRed || rec.FinalPriority == PriorityOrange {
			observed = append(observed, rec)
		}
	}
	return observed, nil
}

// filterWaiting drops records whose attendance left the waiting disposition.
// Records not yet linked to an attendance are kept.
func (s *Service) filterWaiting(ctx context.Context, records []*TriageRecord) ([]*TriageRecord, error) {
	var ids []uuid.UUID
	for _, rec := range records {
		if rec.AttendanceID != nil {
			ids = append(ids, *rec.AttendanceID)
		}
	}

	statuses := map[uuid.UUID]string{}
	if len(ids) > 0 {
		var err error
		statuses, err = s.dispositions.StatusesByAttendance(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	waiting := make([]*TriageRecord, 0, len(records))
	for _, rec := range records {
		if rec.AttendanceID != nil {
			status, known := statuses[*rec.AttendanceID]
			if known && status != DispositionWaiting {
				continue
			}
		}
		waiting = append(waiting, rec)
	}
	return waiting, nil
}
