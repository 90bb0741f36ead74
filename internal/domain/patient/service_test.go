package patient

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/acutecare/triagem/internal/platform/apperr"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, apperr.NotFound("patient", id.String())
	}
	return p, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return apperr.NotFound("patient", p.ID.String())
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.patients[id]
	return ok, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var items []*Patient
	for _, p := range m.patients {
		items = append(items, p)
	}
	return items, len(items), nil
}

func (m *mockRepo) SearchByName(_ context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	var items []*Patient
	for _, p := range m.patients {
		if strings.Contains(strings.ToLower(p.FullName), strings.ToLower(name)) {
			items = append(items, p)
		}
	}
	return items, len(items), nil
}

func TestCreatePatient(t *testing.T) {
	svc := NewService(newMockRepo())
	p := &Patient{FullName: "Maria da Silva"}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
}

func TestCreatePatientNameRequired(t *testing.T) {
	svc := NewService(newMockRepo())
	err := svc.Create(context.Background(), &Patient{})
	if !apperr.IsValidation(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	svc := NewService(newMockRepo())
	p := &Patient{FullName: "João Souza"}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatal(err)
	}

	ok, err := svc.Resolve(context.Background(), p.ID)
	if err != nil || !ok {
		t.Errorf("expected known patient to resolve, ok=%v err=%v", ok, err)
	}
	ok, err = svc.Resolve(context.Background(), uuid.New())
	if err != nil || ok {
		t.Errorf("expected unknown patient not to resolve, ok=%v err=%v", ok, err)
	}
	ok, _ = svc.Resolve(context.Background(), uuid.Nil)
	if ok {
		t.Error("nil id must never resolve")
	}
}

func TestUpdateUnknownPatient(t *testing.T) {
	svc := NewService(newMockRepo())
	err := svc.Update(context.Background(), &Patient{ID: uuid.New(), FullName: "X"})
	if !apperr.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestSearchByName(t *testing.T) {
	svc := NewService(newMockRepo())
	for _, name := range []string{"Ana Lima", "Ana Paula", "Bruno Costa"} {
		if err := svc.Create(context.Background(), &Patient{FullName: name}); err != nil {
			t.Fatal(err)
		}
	}
	items, total, err := svc.SearchByName(context.Background(), "ana", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 matches, got %d", total)
	}
}
