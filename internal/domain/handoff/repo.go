package handoff

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no report exists for the requested triple.
	ErrNotFound = errors.New("handoff not found")
	// ErrConflict is returned when an insert collides with an existing row.
	ErrConflict = errors.New("handoff conflict")
)

// Repository stores handoff reports. Inserts only; existing rows are never
// updated or deleted.
type Repository interface {
	Create(ctx context.Context, h *Handoff) error
	GetLatest(ctx context.Context, patientID, outgoingNurseID uuid.UUID, model string) (*Handoff, error)
}
