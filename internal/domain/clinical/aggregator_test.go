package clinical

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	patients map[uuid.UUID]*Patient
	nurses   map[uuid.UUID]*Nurse
	vitals   []*VitalSign
	events   []*MedicalEvent
	notes    []*NurseNote

	notesSince time.Time
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		patients: make(map[uuid.UUID]*Patient),
		nurses:   make(map[uuid.UUID]*Nurse),
	}
}

func (m *mockRepo) GetPatient(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetNurse(_ context.Context, id uuid.UUID) (*Nurse, error) {
	n, ok := m.nurses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return n, nil
}

func (m *mockRepo) VitalsSince(_ context.Context, _ uuid.UUID, since time.Time) ([]*VitalSign, error) {
	var out []*VitalSign
	for _, v := range m.vitals {
		if !v.RecordedAt.Before(since) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *mockRepo) MedicalEventsSince(_ context.Context, _ uuid.UUID, since time.Time) ([]*MedicalEvent, error) {
	var out []*MedicalEvent
	for _, e := range m.events {
		if !e.RecordedAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepo) NurseNotesForShift(_ context.Context, _, nurseID uuid.UUID, since time.Time) ([]*NurseNote, error) {
	m.notesSince = since
	var out []*NurseNote
	for _, n := range m.notes {
		if n.NurseID == nurseID && !n.CreatedAt.Before(since) {
			out = append(out, n)
		}
	}
	return out, nil
}

func TestSnapshotAssemblesAllFacets(t *testing.T) {
	repo := newMockRepo()
	now := time.Now()

	patient := &Patient{ID: uuid.New(), FirstName: "Maria", LastName: "Santos", MedicalRecordNumber: "MRN-100"}
	nurse := &Nurse{ID: uuid.New(), FirstName: "Eva", LastName: "Kim", LicenseNumber: "RN-77", ShiftStart: now.Add(-8 * time.Hour)}
	repo.patients[patient.ID] = patient
	repo.nurses[nurse.ID] = nurse

	repo.vitals = []*VitalSign{
		{ID: uuid.New(), PatientID: patient.ID, Type: "heart_rate", Value: 82, Unit: "bpm", RecordedAt: now.Add(-1 * time.Hour)},
		{ID: uuid.New(), PatientID: patient.ID, Type: "heart_rate", Value: 90, Unit: "bpm", RecordedAt: now.Add(-48 * time.Hour)},
	}
	repo.notes = []*NurseNote{
		{ID: uuid.New(), PatientID: patient.ID, NurseID: nurse.ID, Content: "stable", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: uuid.New(), PatientID: patient.ID, NurseID: nurse.ID, Content: "old", CreatedAt: now.Add(-20 * time.Hour)},
	}

	agg := NewAggregator(repo, 24*time.Hour)
	snap, err := agg.Snapshot(context.Background(), patient.ID, nurse.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Patient.ID != patient.ID || snap.Nurse.ID != nurse.ID {
		t.Error("snapshot carries wrong identities")
	}
	if len(snap.Vitals) != 1 {
		t.Errorf("expected vitals outside the lookback window to be excluded, got %d", len(snap.Vitals))
	}
	if len(snap.Notes) != 1 {
		t.Errorf("expected notes before shift start to be excluded, got %d", len(snap.Notes))
	}
	if !repo.notesSince.Equal(nurse.ShiftStart) {
		t.Errorf("notes should be bounded by shift start, got %v", repo.notesSince)
	}
}

func TestSnapshotExcludesOtherNursesNotes(t *testing.T) {
	repo := newMockRepo()
	now := time.Now()

	patient := &Patient{ID: uuid.New(), MedicalRecordNumber: "MRN-100"}
	outgoing := &Nurse{ID: uuid.New(), LicenseNumber: "RN-77", ShiftStart: now.Add(-8 * time.Hour)}
	other := &Nurse{ID: uuid.New(), LicenseNumber: "RN-12", ShiftStart: now.Add(-8 * time.Hour)}
	repo.patients[patient.ID] = patient
	repo.nurses[outgoing.ID] = outgoing
	repo.nurses[other.ID] = other

	repo.notes = []*NurseNote{
		{ID: uuid.New(), PatientID: patient.ID, NurseID: outgoing.ID, Content: "tolerating fluids", CreatedAt: now.Add(-1 * time.Hour)},
		{ID: uuid.New(), PatientID: patient.ID, NurseID: other.ID, Content: "someone else's", CreatedAt: now.Add(-1 * time.Hour)},
	}

	agg := NewAggregator(repo, 24*time.Hour)
	snap, err := agg.Snapshot(context.Background(), patient.ID, outgoing.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Notes) != 1 {
		t.Fatalf("expected only the outgoing nurse's note, got %d", len(snap.Notes))
	}
	if snap.Notes[0].NurseID != outgoing.ID {
		t.Errorf("snapshot carries a note authored by nurse %s", snap.Notes[0].NurseID)
	}
}

func TestSnapshotMissingPatient(t *testing.T) {
	repo := newMockRepo()
	nurse := &Nurse{ID: uuid.New()}
	repo.nurses[nurse.ID] = nurse

	agg := NewAggregator(repo, 24*time.Hour)
	_, err := agg.Snapshot(context.Background(), uuid.New(), nurse.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotMissingNurse(t *testing.T) {
	repo := newMockRepo()
	patient := &Patient{ID: uuid.New()}
	repo.patients[patient.ID] = patient

	agg := NewAggregator(repo, 24*time.Hour)
	_, err := agg.Snapshot(context.Background(), patient.ID, uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotEmptyDataIsNotAnError(t *testing.T) {
	repo := newMockRepo()
	patient := &Patient{ID: uuid.New()}
	nurse := &Nurse{ID: uuid.New(), ShiftStart: time.Now().Add(-4 * time.Hour)}
	repo.patients[patient.ID] = patient
	repo.nurses[nurse.ID] = nurse

	agg := NewAggregator(repo, 24*time.Hour)
	snap, err := agg.Snapshot(context.Background(), patient.ID, nurse.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Vitals) != 0 || len(snap.Events) != 0 || len(snap.Notes) != 0 {
		t.Error("expected empty facets")
	}
}

func TestPatientAge(t *testing.T) {
	p := &Patient{BirthDate: time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)}
	at := time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC)
	if got := p.Age(at); got != 35 {
		t.Errorf("expected 35 before birthday, got %d", got)
	}
	at = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	if got := p.Age(at); got != 36 {
		t.Errorf("expected 36 on birthday, got %d", got)
	}
}
