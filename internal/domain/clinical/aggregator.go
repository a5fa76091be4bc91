package clinical

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Aggregator assembles the Snapshot that report generation works from.
// Identity lookups are fail-fast: a missing patient or nurse aborts the
// whole assembly. Empty vitals, events or notes do not.
type Aggregator struct {
	repo     Repository
	lookback time.Duration
	now      func() time.Time
}

func NewAggregator(repo Repository, lookback time.Duration) *Aggregator {
	return &Aggregator{repo: repo, lookback: lookback, now: time.Now}
}

// Snapshot gathers the patient's identity and recent clinical data together
// with the nurse's identity and the notes that nurse wrote for the patient
// since their shift began. Notes by other nurses are not part of a handoff.
func (a *Aggregator) Snapshot(ctx context.Context, patientID, nurseID uuid.UUID) (*Snapshot, error) {
	patient, err := a.repo.GetPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("get patient %s: %w", patientID, err)
	}
	nurse, err := a.repo.GetNurse(ctx, nurseID)
	if err != nil {
		return nil, fmt.Errorf("get nurse %s: %w", nurseID, err)
	}

	since := a.now().Add(-a.lookback)
	vitals, err := a.repo.VitalsSince(ctx, patientID, since)
	if err != nil {
		return nil, fmt.Errorf("vitals for %s: %w", patientID, err)
	}
	events, err := a.repo.MedicalEventsSince(ctx, patientID, since)
	if err != nil {
		return nil, fmt.Errorf("medical events for %s: %w", patientID, err)
	}
	notes, err := a.repo.NurseNotesForShift(ctx, patientID, nurse.ID, nurse.ShiftStart)
	if err != nil {
		return nil, fmt.Errorf("nurse notes for %s: %w", patientID, err)
	}

	return &Snapshot{
		Patient: patient,
		Nurse:   nurse,
		Vitals:  vitals,
		Events:  events,
		Notes:   notes,
	}, nil
}
