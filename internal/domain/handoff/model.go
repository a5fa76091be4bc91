package handoff

import (
	"time"

	"github.com/google/uuid"
)

// StatusDraft is the status every generated report carries until a human
// signs off on it downstream.
const StatusDraft = "draft"

// PatientIdentity is the identifying block of a finished report.
type PatientIdentity struct {
	Name          string `json:"name"`
	MRN           string `json:"mrn"`
	Age           int    `json:"age"`
	Gender        string `json:"gender"`
	RoomNumber    string `json:"room_number"`
	AdmissionDate string `json:"admission_date"`
}

// Situation carries the free-form situation feedback lines.
type Situation struct {
	Feedback []string `json:"feedback"`
}

// ReportedBy identifies the outgoing nurse on the report.
type ReportedBy struct {
	Nurse         string `json:"nurse"`
	LicenseNumber string `json:"license_number"`
}

// SbarReport is the finished report body in its serialized shape.
type SbarReport struct {
	Patient        PatientIdentity `json:"patient"`
	Situation      Situation       `json:"situation"`
	Background     []string        `json:"background"`
	Assessment     []string        `json:"assessment"`
	Recommendation []string        `json:"recommendation"`
	ReportedBy     ReportedBy      `json:"reported_by"`
}

// UsageRecord is the normalized accounting attached to every report.
type UsageRecord struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	CostEstimate     float64 `json:"cost_estimate"`
}

// ReportDocument is the full persisted payload: the report body plus the
// usage accounting for the call that produced it.
type ReportDocument struct {
	SbarReport SbarReport  `json:"sbar_report"`
	Usage      UsageRecord `json:"usage"`
}

// Handoff maps to the handoff table. Rows are insert-only; regeneration
// creates a new row rather than mutating the old one.
type Handoff struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	OutgoingNurseID uuid.UUID `db:"outgoing_nurse_id" json:"outgoing_nurse_id"`
	IncomingNurseID uuid.UUID `db:"incoming_nurse_id" json:"incoming_nurse_id"`
	Model           string    `db:"model" json:"model"`
	Status          string    `db:"status" json:"status"`
	ReportText      string    `db:"report_text" json:"report_text"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
