package handoff

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nursehub/nursing-assistant/internal/domain/clinical"
	"github.com/nursehub/nursing-assistant/internal/platform/llm"
)

// -- Mocks --

type mockGateway struct {
	supported map[string]bool
	price     float64
	draft     *llm.ReportDraft
	usage     llm.Usage
	errs      []error

	calls int
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		supported: map[string]bool{"chatgpt": true},
		price:     0.00000015,
		draft:     sampleDraft(),
		usage:     llm.Usage{PromptTokens: 900, CompletionTokens: 100, TotalTokens: 1000},
	}
}

func (m *mockGateway) Supports(provider string) bool { return m.supported[provider] }

func (m *mockGateway) PricePerToken(provider string) (float64, error) {
	if !m.supported[provider] {
		return 0, fmt.Errorf("%w: %q", llm.ErrUnsupportedProvider, provider)
	}
	return m.price, nil
}

func (m *mockGateway) GenerateReport(_ context.Context, provider, _, _ string) (*llm.ReportDraft, llm.Usage, error) {
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return nil, llm.Usage{}, err
		}
	}
	return m.draft, m.usage, nil
}

type mockSnapshots struct {
	snap *clinical.Snapshot
	err  error
}

func (m *mockSnapshots) Snapshot(_ context.Context, _, _ uuid.UUID) (*clinical.Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.snap, nil
}

type mockHandoffRepo struct {
	rows      []*Handoff
	createErr error
}

func (m *mockHandoffRepo) Create(_ context.Context, h *Handoff) error {
	if m.createErr != nil {
		return m.createErr
	}
	h.ID = uuid.New()
	m.rows = append(m.rows, h)
	return nil
}

func (m *mockHandoffRepo) GetLatest(_ context.Context, patientID, outgoingNurseID uuid.UUID, model string) (*Handoff, error) {
	for i := len(m.rows) - 1; i >= 0; i-- {
		h := m.rows[i]
		if h.PatientID == patientID && h.OutgoingNurseID == outgoingNurseID && h.Model == model {
			return h, nil
		}
	}
	return nil, ErrNotFound
}

func newTestService(gw *mockGateway, repo *mockHandoffRepo) *Service {
	return NewService(&mockSnapshots{snap: sampleSnapshot()}, gw, repo, 2, zerolog.Nop())
}

func testRequest() GenerateRequest {
	return GenerateRequest{
		PatientID:       uuid.New(),
		OutgoingNurseID: uuid.New(),
		IncomingNurseID: uuid.New(),
		Model:           "chatgpt",
	}
}

// -- Tests --

func TestGenerateStoresDraft(t *testing.T) {
	gw := newMockGateway()
	repo := &mockHandoffRepo{}
	svc := newTestService(gw, repo)

	result, err := svc.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Report == nil {
		t.Fatal("result carries no report")
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected 1 stored row, got %d", len(repo.rows))
	}
	if repo.rows[0].Status != StatusDraft {
		t.Errorf("stored status = %q", repo.rows[0].Status)
	}
	if !strings.Contains(repo.rows[0].ReportText, `"sbar_report"`) {
		t.Error("stored report text should be the serialized document")
	}
	if result.PersistenceWarning != "" {
		t.Errorf("unexpected warning: %s", result.PersistenceWarning)
	}
}

func TestGenerateUnsupportedModelMakesNoCalls(t *testing.T) {
	gw := newMockGateway()
	svc := newTestService(gw, &mockHandoffRepo{})

	req := testRequest()
	req.Model = "claude"
	_, err := svc.Generate(context.Background(), req)
	if !errors.Is(err, llm.ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("expected zero provider calls, got %d", gw.calls)
	}
}

func TestGenerateRetriesProviderFailures(t *testing.T) {
	gw := newMockGateway()
	gw.errs = []error{
		&llm.ProviderError{Provider: "chatgpt", Err: errors.New("503")},
		&llm.ProviderError{Provider: "chatgpt", Err: errors.New("503")},
	}
	repo := &mockHandoffRepo{}
	svc := newTestService(gw, repo)

	_, err := svc.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error after retries: %v", err)
	}
	if gw.calls != 3 {
		t.Errorf("expected 3 calls (2 failures + 1 success), got %d", gw.calls)
	}
}

func TestGenerateSchemaErrorIsNotRetried(t *testing.T) {
	gw := newMockGateway()
	gw.errs = []error{&llm.SchemaError{Provider: "chatgpt", Reason: "missing situation"}}
	svc := newTestService(gw, &mockHandoffRepo{})

	_, err := svc.Generate(context.Background(), testRequest())
	var schemaErr *llm.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if gw.calls != 1 {
		t.Errorf("schema errors must not be retried, got %d calls", gw.calls)
	}
}

func TestGenerateStorageFailureKeepsReport(t *testing.T) {
	gw := newMockGateway()
	repo := &mockHandoffRepo{createErr: ErrConflict}
	svc := newTestService(gw, repo)

	result, err := svc.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("storage failure should not fail the request: %v", err)
	}
	if result.Report == nil {
		t.Fatal("report discarded on storage failure")
	}
	if result.PersistenceWarning == "" {
		t.Error("expected a persistence warning")
	}
}

func TestGenerateSnapshotNotFound(t *testing.T) {
	gw := newMockGateway()
	svc := NewService(&mockSnapshots{err: clinical.ErrNotFound}, gw, &mockHandoffRepo{}, 2, zerolog.Nop())

	_, err := svc.Generate(context.Background(), testRequest())
	if !errors.Is(err, clinical.ErrNotFound) {
		t.Fatalf("expected clinical.ErrNotFound, got %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("expected zero provider calls, got %d", gw.calls)
	}
}

func TestRegenerateRequiresPriorReport(t *testing.T) {
	gw := newMockGateway()
	svc := newTestService(gw, &mockHandoffRepo{})

	_, err := svc.Regenerate(context.Background(), testRequest())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("expected zero provider calls, got %d", gw.calls)
	}
}

func TestRegenerateAppendsNewRow(t *testing.T) {
	gw := newMockGateway()
	repo := &mockHandoffRepo{}
	svc := newTestService(gw, repo)

	req := testRequest()
	if _, err := svc.Generate(context.Background(), req); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.Regenerate(context.Background(), req); err != nil {
		t.Fatalf("regenerate: %v", err)
	}

	if len(repo.rows) != 2 {
		t.Fatalf("regeneration must insert a new row, got %d rows", len(repo.rows))
	}
	if repo.rows[0].ID == repo.rows[1].ID {
		t.Error("regenerated row should have its own id")
	}
	latest, err := repo.GetLatest(context.Background(), req.PatientID, req.OutgoingNurseID, req.Model)
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest.ID != repo.rows[1].ID {
		t.Error("latest should be the regenerated row")
	}
}
