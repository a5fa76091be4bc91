package handoff

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Create(ctx context.Context, h *Handoff) error {
	h.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO handoff (id, patient_id, outgoing_nurse_id, incoming_nurse_id, model, status, report_text)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		h.ID, h.PatientID, h.OutgoingNurseID, h.IncomingNurseID, h.Model, h.Status, h.ReportText)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return ErrConflict
	}
	return err
}

const handoffCols = `id, patient_id, outgoing_nurse_id, incoming_nurse_id, model, status, report_text, created_at`

func (r *repoPG) GetLatest(ctx context.Context, patientID, outgoingNurseID uuid.UUID, model string) (*Handoff, error) {
	var h Handoff
	err := r.pool.QueryRow(ctx, `
		SELECT `+handoffCols+` FROM handoff
		WHERE patient_id = $1 AND outgoing_nurse_id = $2 AND model = $3
		ORDER BY created_at DESC LIMIT 1`,
		patientID, outgoingNurseID, model).
		Scan(&h.ID, &h.PatientID, &h.OutgoingNurseID, &h.IncomingNurseID, &h.Model, &h.Status, &h.ReportText, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}
