package triage

import (
	"time"

	"github.com/google/uuid"

	"github.com/acutecare/triagem/internal/platform/apperr"
)

// PriorityLevel is the ordinal urgency classification, serialized as the
// lowercase color token.
type PriorityLevel string

const (
	PriorityRed    PriorityLevel = "red"    // immediate
	PriorityOrange PriorityLevel = "orange" // very urgent, 10 min
	PriorityYellow PriorityLevel = "yellow" // urgent, 1 h
	PriorityGreen  PriorityLevel = "green"  // standard, 2-4 h
	PriorityBlue   PriorityLevel = "blue"   // non-urgent, 4-24 h
)

var priorityRank = map[PriorityLevel]int{
	PriorityRed:    0,
	PriorityOrange: 1,
	PriorityYellow: 2,
	PriorityGreen:  3,
	PriorityBlue:   4,
}

// Rank returns the queue rank of the priority, 0 being the most urgent.
// Unknown values rank after blue.
func (p PriorityLevel) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

// Valid reports whether p is one of the five known levels.
func (p PriorityLevel) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

// ParsePriority converts a wire token into a PriorityLevel.
func ParsePriority(s string) (PriorityLevel, error) {
	p := PriorityLevel(s)
	if !p.Valid() {
		return "", apperr.Validation("priority", "must be one of red, orange, yellow, green, blue")
	}
	return p, nil
}

// Presentation describes how the patient arrived at the service.
type Presentation string

const (
	PresentationWalking         Presentation = "walking"
	PresentationWalkingWithHelp Presentation = "walking_with_help"
	PresentationWheelchair      Presentation = "wheelchair"
	PresentationStretcher       Presentation = "stretcher"
)

// Consciousness is the observed level of consciousness at presentation.
type Consciousness string

const (
	ConsciousnessAlert       Consciousness = "alert"
	ConsciousnessConfused    Consciousness = "confused"
	ConsciousnessLethargic   Consciousness = "lethargic"
	ConsciousnessUnconscious Consciousness = "unconscious"
)

// VitalSigns holds the measurements taken at triage. All fields are optional;
// nil means not measured and never matches a classification threshold.
type VitalSigns struct {
	RespiratoryRate  *int     `json:"respiratory_rate,omitempty"`
	HeartRate        *int     `json:"heart_rate,omitempty"`
	BloodPressureSys *int     `json:"blood_pressure_sys,omitempty"`
	BloodPressureDia *int     `json:"blood_pressure_dia,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	OxygenSaturation *int     `json:"oxygen_saturation,omitempty"`
	PainScale        *int     `json:"pain_scale,omitempty"`
}

// PresentationInput is the transient clinical picture submitted for
// classification. It is snapshotted onto the TriageRecord but never persisted
// on its own.
type PresentationInput struct {
	ChiefComplaint string        `json:"chief_complaint"`
	VitalSigns     *VitalSigns   `json:"vital_signs,omitempty"`
	Discriminators []string      `json:"discriminators,omitempty"`
	Presentation   Presentation  `json:"presentation,omitempty"`
	Consciousness  Consciousness `json:"consciousness,omitempty"`
}

// MaxDiscriminators caps the free-text clinical flags per presentation.
const MaxDiscriminators = 5

// TriageRecord is the authoritative triage result for one patient encounter.
// CalculatedPriority and TriageTime are immutable after creation;
// FinalPriority changes only through re-evaluation, which always leaves a
// ReEvaluation history entry. Version backs optimistic locking on updates.
type TriageRecord struct {
	ID                 uuid.UUID     `db:"id" json:"id"`
	EstablishmentID    *uuid.UUID    `db:"establishment_id" json:"establishment_id,omitempty"`
	PatientID          uuid.UUID     `db:"patient_id" json:"patient_id"`
	AttendanceID       *uuid.UUID    `db:"attendance_id" json:"attendance_id,omitempty"`
	TriagedBy          uuid.UUID     `db:"triaged_by" json:"triaged_by"`
	ChiefComplaint     string        `db:"chief_complaint" json:"chief_complaint"`
	VitalSigns         VitalSigns    `db:"-" json:"vital_signs"`
	Discriminators     []string      `db:"discriminators" json:"discriminators,omitempty"`
	Presentation       Presentation  `db:"presentation" json:"presentation,omitempty"`
	Consciousness      Consciousness `db:"consciousness" json:"consciousness,omitempty"`
	CalculatedPriority PriorityLevel `db:"calculated_priority" json:"calculated_priority"`
	FinalPriority      PriorityLevel `db:"final_priority" json:"final_priority"`
	Reasoning          string        `db:"reasoning" json:"reasoning"`
	RecommendedTime    string        `db:"recommended_time" json:"recommended_time"`
	OverrideReason     *string       `db:"override_reason" json:"override_reason,omitempty"`
	TriageTime         time.Time     `db:"triage_time" json:"triage_time"`
	Version            int           `db:"version" json:"version"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updated_at"`

	ReEvaluations []*ReEvaluation `db:"-" json:"re_evaluations,omitempty"`
}

// ReEvaluation is one audit entry of a priority change on a record.
type ReEvaluation struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	TriageRecordID uuid.UUID     `db:"triage_record_id" json:"triage_record_id"`
	OldPriority    PriorityLevel `db:"old_priority" json:"old_priority"`
	NewPriority    PriorityLevel `db:"new_priority" json:"new_priority"`
	Reason         string        `db:"reason" json:"reason"`
	ActorID        uuid.UUID     `db:"actor_id" json:"actor_id"`
	ChangedAt      time.Time     `db:"changed_at" json:"changed_at"`
}

// Overridden reports whether the record's final priority departs from the
// calculated one.
func (t *TriageRecord) Overridden() bool {
	return t.FinalPriority != t.CalculatedPriority
}
