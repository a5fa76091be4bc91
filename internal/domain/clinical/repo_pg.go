package clinical

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const patientCols = `id, first_name, last_name, sex, birth_date, medical_record_number, room_number, admission_date, created_at`

func (r *repoPG) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var p Patient
	err := r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id).
		Scan(&p.ID, &p.FirstName, &p.LastName, &p.Sex, &p.BirthDate, &p.MedicalRecordNumber,
			&p.RoomNumber, &p.AdmissionDate, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const nurseCols = `id, first_name, last_name, license_number, shift_start, created_at`

func (r *repoPG) GetNurse(ctx context.Context, id uuid.UUID) (*Nurse, error) {
	var n Nurse
	err := r.pool.QueryRow(ctx, `SELECT `+nurseCols+` FROM nurse WHERE id = $1`, id).
		Scan(&n.ID, &n.FirstName, &n.LastName, &n.LicenseNumber, &n.ShiftStart, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *repoPG) VitalsSince(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*VitalSign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, type, value, unit, recorded_at, created_at
		FROM vital_sign WHERE patient_id = $1 AND recorded_at >= $2 ORDER BY recorded_at`,
		patientID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*VitalSign
	for rows.Next() {
		var v VitalSign
		if err := rows.Scan(&v.ID, &v.PatientID, &v.Type, &v.Value, &v.Unit, &v.RecordedAt, &v.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &v)
	}
	return items, rows.Err()
}

func (r *repoPG) MedicalEventsSince(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*MedicalEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, data_type, data_value, source, recorded_at, created_at
		FROM medical_event WHERE patient_id = $1 AND recorded_at >= $2 ORDER BY recorded_at`,
		patientID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*MedicalEvent
	for rows.Next() {
		var e MedicalEvent
		if err := rows.Scan(&e.ID, &e.PatientID, &e.DataType, &e.DataValue, &e.Source, &e.RecordedAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &e)
	}
	return items, rows.Err()
}

func (r *repoPG) NurseNotesForShift(ctx context.Context, patientID, nurseID uuid.UUID, since time.Time) ([]*NurseNote, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, nurse_id, content, created_at
		FROM nurse_note WHERE patient_id = $1 AND nurse_id = $2 AND created_at >= $3 ORDER BY created_at`,
		patientID, nurseID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*NurseNote
	for rows.Next() {
		var n NurseNote
		if err := rows.Scan(&n.ID, &n.PatientID, &n.NurseID, &n.Content, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &n)
	}
	return items, rows.Err()
}
