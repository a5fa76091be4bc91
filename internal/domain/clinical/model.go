package clinical

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table.
type Patient struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	FirstName           string     `db:"first_name" json:"first_name"`
	LastName            string     `db:"last_name" json:"last_name"`
	Sex                 string     `db:"sex" json:"sex"`
	BirthDate           time.Time  `db:"birth_date" json:"birth_date"`
	MedicalRecordNumber string     `db:"medical_record_number" json:"medical_record_number"`
	RoomNumber          *string    `db:"room_number" json:"room_number,omitempty"`
	AdmissionDate       *time.Time `db:"admission_date" json:"admission_date,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
}

// Age returns the patient's age in whole years at the given reference time.
func (p *Patient) Age(at time.Time) int {
	years := at.Year() - p.BirthDate.Year()
	anniversary := p.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	return years
}

// Nurse maps to the nurse table.
type Nurse struct {
	ID            uuid.UUID `db:"id" json:"id"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	LicenseNumber string    `db:"license_number" json:"license_number"`
	ShiftStart    time.Time `db:"shift_start" json:"shift_start"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// VitalSign maps to the vital_sign table.
type VitalSign struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	Type       string    `db:"type" json:"type"`
	Value      float64   `db:"value" json:"value"`
	Unit       string    `db:"unit" json:"unit"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// MedicalEvent maps to the medical_event table. DataValue holds the
// type-specific payload as stored in the jsonb column.
type MedicalEvent struct {
	ID         uuid.UUID              `db:"id" json:"id"`
	PatientID  uuid.UUID              `db:"patient_id" json:"patient_id"`
	DataType   string                 `db:"data_type" json:"data_type"`
	DataValue  map[string]interface{} `db:"data_value" json:"data_value"`
	Source     *string                `db:"source" json:"source,omitempty"`
	RecordedAt time.Time              `db:"recorded_at" json:"recorded_at"`
	CreatedAt  time.Time              `db:"created_at" json:"created_at"`
}

// NurseNote maps to the nurse_note table.
type NurseNote struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	NurseID   uuid.UUID `db:"nurse_id" json:"nurse_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Snapshot is the assembled clinical picture for one patient under one
// nurse's care: identity, recent vitals and medical data, and the notes
// written since the nurse's shift began.
type Snapshot struct {
	Patient *Patient        `json:"patient"`
	Nurse   *Nurse          `json:"nurse"`
	Vitals  []*VitalSign    `json:"vitals"`
	Events  []*MedicalEvent `json:"events"`
	Notes   []*NurseNote    `json:"notes"`
}
