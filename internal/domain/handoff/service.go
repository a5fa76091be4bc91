package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nursehub/nursing-assistant/internal/domain/clinical"
	"github.com/nursehub/nursing-assistant/internal/platform/llm"
)

// Gateway is the slice of the provider gateway the service needs.
type Gateway interface {
	Supports(provider string) bool
	PricePerToken(provider string) (float64, error)
	GenerateReport(ctx context.Context, provider, systemPrompt, userPrompt string) (*llm.ReportDraft, llm.Usage, error)
}

// SnapshotSource assembles the clinical picture a report is generated from.
type SnapshotSource interface {
	Snapshot(ctx context.Context, patientID, nurseID uuid.UUID) (*clinical.Snapshot, error)
}

// GenerateRequest identifies the report to produce: the patient, the two
// nurses on either side of the handoff, and the provider tag.
type GenerateRequest struct {
	PatientID       uuid.UUID `json:"patient_id"`
	OutgoingNurseID uuid.UUID `json:"outgoing_nurse_id"`
	IncomingNurseID uuid.UUID `json:"incoming_nurse_id"`
	Model           string    `json:"model"`
}

// GenerateResult is the service's answer: the report document, the stored
// row, and a warning when the report was produced but could not be stored.
type GenerateResult struct {
	Report             *ReportDocument `json:"report"`
	Handoff            *Handoff        `json:"handoff"`
	PersistenceWarning string          `json:"persistence_warning,omitempty"`
}

type Service struct {
	snapshots  SnapshotSource
	gateway    Gateway
	repo       Repository
	maxRetries uint64
	logger     zerolog.Logger
}

func NewService(snapshots SnapshotSource, gateway Gateway, repo Repository, maxRetries int, logger zerolog.Logger) *Service {
	return &Service{
		snapshots:  snapshots,
		gateway:    gateway,
		repo:       repo,
		maxRetries: uint64(maxRetries),
		logger:     logger,
	}
}

// Generate produces a fresh report for the handoff triple and stores it as a
// draft. A storage failure does not discard the generated report: the result
// carries it along with a persistence warning.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if !s.gateway.Supports(req.Model) {
		return nil, fmt.Errorf("%w: %q", llm.ErrUnsupportedProvider, req.Model)
	}

	snap, err := s.snapshots.Snapshot(ctx, req.PatientID, req.OutgoingNurseID)
	if err != nil {
		return nil, err
	}

	systemPrompt, userPrompt := ComposeGenerate(snap)
	return s.generate(ctx, req, systemPrompt, userPrompt)
}

// Regenerate produces a new report that preserves the background of the
// latest stored report for the same patient, outgoing nurse and provider.
// Missing prior report is the caller's error, not an implicit fresh generate.
func (s *Service) Regenerate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if !s.gateway.Supports(req.Model) {
		return nil, fmt.Errorf("%w: %q", llm.ErrUnsupportedProvider, req.Model)
	}

	prior, err := s.repo.GetLatest(ctx, req.PatientID, req.OutgoingNurseID, req.Model)
	if err != nil {
		return nil, fmt.Errorf("load prior report: %w", err)
	}

	snap, err := s.snapshots.Snapshot(ctx, req.PatientID, req.OutgoingNurseID)
	if err != nil {
		return nil, err
	}

	systemPrompt, userPrompt := ComposeRegenerate(snap, prior.ReportText)
	return s.generate(ctx, req, systemPrompt, userPrompt)
}

func (s *Service) generate(ctx context.Context, req GenerateRequest, systemPrompt, userPrompt string) (*GenerateResult, error) {
	draft, usage, err := s.callWithRetry(ctx, req.Model, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	price, err := s.gateway.PricePerToken(req.Model)
	if err != nil {
		return nil, err
	}

	doc := AssembleReport(draft, usage, price)
	reportText, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serialize report: %w", err)
	}

	h := &Handoff{
		PatientID:       req.PatientID,
		OutgoingNurseID: req.OutgoingNurseID,
		IncomingNurseID: req.IncomingNurseID,
		Model:           req.Model,
		Status:          StatusDraft,
		ReportText:      string(reportText),
	}

	result := &GenerateResult{Report: doc, Handoff: h}
	if err := s.repo.Create(ctx, h); err != nil {
		s.logger.Warn().Err(err).
			Str("patient_id", req.PatientID.String()).
			Str("model", req.Model).
			Msg("report generated but not stored")
		result.PersistenceWarning = "report generated but could not be stored: " + err.Error()
	}
	return result, nil
}

// callWithRetry retries provider failures with exponential backoff. Schema
// violations and unsupported providers are permanent: a second call with the
// same prompt will not fix them.
func (s *Service) callWithRetry(ctx context.Context, model, systemPrompt, userPrompt string) (*llm.ReportDraft, llm.Usage, error) {
	var (
		draft *llm.ReportDraft
		usage llm.Usage
	)
	op := func() error {
		var err error
		draft, usage, err = s.gateway.GenerateReport(ctx, model, systemPrompt, userPrompt)
		if err == nil {
			return nil
		}
		var provErr *llm.ProviderError
		if errors.As(err, &provErr) {
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, llm.Usage{}, err
	}
	return draft, usage, nil
}
