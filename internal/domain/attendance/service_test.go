package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/acutecare/triagem/internal/platform/apperr"
)

type mockRepo struct {
	attendances map[uuid.UUID]*Attendance
	history     map[uuid.UUID][]StatusHistory
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		attendances: make(map[uuid.UUID]*Attendance),
		history:     make(map[uuid.UUID][]StatusHistory),
	}
}

func (m *mockRepo) Create(_ context.Context, a *Attendance) error {
	cp := *a
	m.attendances[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Attendance, error) {
	a, ok := m.attendances[id]
	if !ok {
		return nil, apperr.NotFound("attendance", id.String())
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, a *Attendance, h *StatusHistory) error {
	if _, ok := m.attendances[a.ID]; !ok {
		return apperr.NotFound("attendance", a.ID.String())
	}
	cp := *a
	m.attendances[a.ID] = &cp
	m.history[a.ID] = append(m.history[a.ID], *h)
	return nil
}

func (m *mockRepo) ListStatusHistory(_ context.Context, attendanceID uuid.UUID) ([]StatusHistory, error) {
	return m.history[attendanceID], nil
}

func (m *mockRepo) StatusesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]Status, error) {
	result := make(map[uuid.UUID]Status)
	for _, id := range ids {
		if a, ok := m.attendances[id]; ok {
			result[id] = a.Status
		}
	}
	return result, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]Attendance, error) {
	var items []Attendance
	for _, a := range m.attendances {
		if a.PatientID == patientID {
			items = append(items, *a)
		}
	}
	return items, nil
}

type mockDirectory struct {
	known map[uuid.UUID]bool
}

func (m *mockDirectory) Resolve(_ context.Context, id uuid.UUID) (bool, error) {
	return m.known[id], nil
}

func newFixture() (*Service, *mockRepo, uuid.UUID) {
	repo := newMockRepo()
	patientID := uuid.New()
	svc := NewService(repo, &mockDirectory{known: map[uuid.UUID]bool{patientID: true}})
	return svc, repo, patientID
}

func TestCreateStartsWaiting(t *testing.T) {
	svc, _, patientID := newFixture()

	a, err := svc.Create(context.Background(), CreateCommand{PatientID: patientID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Status != StatusWaiting {
		t.Errorf("expected new attendance to be waiting, got %s", a.Status)
	}
	if a.ArrivalTime.IsZero() {
		t.Error("expected arrival time to default to now")
	}
}

func TestCreateUnknownPatient(t *testing.T) {
	svc, _, _ := newFixture()

	_, err := svc.Create(context.Background(), CreateCommand{PatientID: uuid.New()})
	if !apperr.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusWaiting, StatusInProgress, true},
		{StatusWaiting, StatusTransferred, true},
		{StatusWaiting, StatusCompleted, false},
		{StatusWaiting, StatusWaiting, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusTransferred, true},
		{StatusInProgress, StatusWaiting, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCompleted, StatusTransferred, false},
		{StatusTransferred, StatusInProgress, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestChangeStatusRecordsHistory(t *testing.T) {
	svc, repo, patientID := newFixture()

	a, err := svc.Create(context.Background(), CreateCommand{PatientID: patientID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	actor := uuid.New()
	updated, err := svc.ChangeStatus(context.Background(), a.ID, ChangeStatusCommand{
		Status:    StatusInProgress,
		ChangedBy: &actor,
	})
	if err != nil {
		t.Fatalf("change status: %v", err)
	}
	if updated.Status != StatusInProgress {
		t.Errorf("expected in_progress, got %s", updated.Status)
	}

	history := repo.history[a.ID]
	if len(history) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(history))
	}
	if history[0].FromStatus != StatusWaiting || history[0].ToStatus != StatusInProgress {
		t.Errorf("unexpected history row: %+v", history[0])
	}
	if history[0].ChangedBy == nil || *history[0].ChangedBy != actor {
		t.Error("expected history to record the acting user")
	}
}

func TestChangeStatusRejectsIllegalTransition(t *testing.T) {
	svc, _, patientID := newFixture()

	a, _ := svc.Create(context.Background(), CreateCommand{PatientID: patientID})
	_, err := svc.ChangeStatus(context.Background(), a.ID, ChangeStatusCommand{Status: StatusCompleted})
	if !apperr.IsConflict(err) {
		t.Errorf("expected ConflictError for waiting -> completed, got %v", err)
	}
}

func TestChangeStatusUnknownToken(t *testing.T) {
	svc, _, patientID := newFixture()

	a, _ := svc.Create(context.Background(), CreateCommand{PatientID: patientID})
	_, err := svc.ChangeStatus(context.Background(), a.ID, ChangeStatusCommand{Status: Status("discharged")})
	if !apperr.IsValidation(err) {
		t.Errorf("expected ValidationError for unknown status, got %v", err)
	}
}

func TestTransferRequiresDestination(t *testing.T) {
	svc, _, patientID := newFixture()

	a, _ := svc.Create(context.Background(), CreateCommand{PatientID: patientID})
	_, err := svc.ChangeStatus(context.Background(), a.ID, ChangeStatusCommand{Status: StatusTransferred})
	if !apperr.IsValidation(err) {
		t.Errorf("expected ValidationError without transfer_dest, got %v", err)
	}

	dest := "Hospital Municipal"
	updated, err := svc.ChangeStatus(context.Background(), a.ID, ChangeStatusCommand{
		Status:       StatusTransferred,
		TransferDest: &dest,
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if updated.TransferDest == nil || *updated.TransferDest != dest {
		t.Error("expected transfer destination to be stored")
	}
	if updated.CompletedAt == nil {
		t.Error("expected transfer to close the attendance")
	}
}

func TestTerminalStatusSetsCompletedAt(t *testing.T) {
	svc, _, patientID := newFixture()
	fixed := time.Date(2025, 3, 9, 14, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	a, _ := svc.Create(context.Background(), CreateCommand{PatientID: patientID})
	if _, err := svc.ChangeStatus(context.Background(), a.ID, ChangeStatusCommand{Status: StatusInProgress}); err != nil {
		t.Fatalf("in_progress: %v", err)
	}
	done, err := svc.ChangeStatus(context.Background(), a.ID, ChangeStatusCommand{Status: StatusCompleted})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.CompletedAt == nil || !done.CompletedAt.Equal(fixed) {
		t.Errorf("expected completed_at %v, got %v", fixed, done.CompletedAt)
	}
}

func TestStatusesByAttendance(t *testing.T) {
	svc, _, patientID := newFixture()

	waiting, _ := svc.Create(context.Background(), CreateCommand{PatientID: patientID})
	busy, _ := svc.Create(context.Background(), CreateCommand{PatientID: patientID})
	if _, err := svc.ChangeStatus(context.Background(), busy.ID, ChangeStatusCommand{Status: StatusInProgress}); err != nil {
		t.Fatalf("change status: %v", err)
	}
	unknown := uuid.New()

	statuses, err := svc.StatusesByAttendance(context.Background(), []uuid.UUID{waiting.ID, busy.ID, unknown})
	if err != nil {
		t.Fatalf("statuses: %v", err)
	}
	if statuses[waiting.ID] != "waiting" {
		t.Errorf("expected waiting, got %q", statuses[waiting.ID])
	}
	if statuses[busy.ID] != "in_progress" {
		t.Errorf("expected in_progress, got %q", statuses[busy.ID])
	}
	if _, ok := statuses[unknown]; ok {
		t.Error("unknown attendance must be absent from the result")
	}
}
