package clinical

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested patient or nurse does not exist.
var ErrNotFound = errors.New("not found")

// Repository provides read access to the clinical record. Writes happen
// through the ingestion pipeline, which is owned elsewhere.
type Repository interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetNurse(ctx context.Context, id uuid.UUID) (*Nurse, error)
	VitalsSince(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*VitalSign, error)
	MedicalEventsSince(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*MedicalEvent, error)
	NurseNotesForShift(ctx context.Context, patientID, nurseID uuid.UUID, since time.Time) ([]*NurseNote, error)
}
