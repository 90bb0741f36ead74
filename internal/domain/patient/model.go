package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient is the registry entry the triage engine validates against.
type Patient struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	EstablishmentID *uuid.UUID `db:"establishment_id" json:"establishment_id,omitempty"`
	FullName        string     `db:"full_name" json:"full_name"`
	BirthDate       *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Sex             *string    `db:"sex" json:"sex,omitempty"`
	NationalID      *string    `db:"national_id" json:"national_id,omitempty"`
	Phone           *string    `db:"phone" json:"phone,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}
