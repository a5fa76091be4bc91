package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeProvider struct {
	name  string
	draft *ReportDraft
	usage Usage
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) GenerateReport(_ context.Context, _, _ string) (*ReportDraft, Usage, error) {
	f.calls++
	if f.err != nil {
		return nil, Usage{}, f.err
	}
	return f.draft, f.usage, nil
}

func validDraft() *ReportDraft {
	return &ReportDraft{
		Situation: &SituationDraft{
			PatientName: "Maria Santos",
			MRN:         "MRN-2204",
		},
		Background:     &BackgroundDraft{Items: []string{"diabetes"}},
		Assessment:     &AssessmentDraft{},
		Recommendation: &RecommendationDraft{},
		ReportedBy:     &ReportedByDraft{Nurse: "Eva Kim", LicenseNumber: "RN-7781"},
	}
}

func newTestGateway(window time.Duration) *Gateway {
	return NewGateway(window, time.Minute, zerolog.Nop())
}

func TestGatewayUnknownProviderMakesNoCalls(t *testing.T) {
	gw := newTestGateway(time.Millisecond)
	p := &fakeProvider{name: ProviderChatGPT, draft: validDraft()}
	gw.Register(p, 0.001)

	_, _, err := gw.GenerateReport(context.Background(), "claude", "sys", "user")
	if !errors.Is(err, ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
	if p.calls != 0 {
		t.Errorf("registered provider should not be called, got %d calls", p.calls)
	}
}

func TestGatewaySupports(t *testing.T) {
	gw := newTestGateway(time.Millisecond)
	gw.Register(&fakeProvider{name: ProviderGroq}, 0.001)

	if !gw.Supports(ProviderGroq) {
		t.Error("registered provider should be supported")
	}
	if gw.Supports(ProviderGemini) {
		t.Error("unregistered provider should not be supported")
	}
}

func TestGatewayPricePerToken(t *testing.T) {
	gw := newTestGateway(time.Millisecond)
	gw.Register(&fakeProvider{name: ProviderXAI}, 0.0000002)

	price, err := gw.PricePerToken(ProviderXAI)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 0.0000002 {
		t.Errorf("price = %v", price)
	}
	if _, err := gw.PricePerToken("claude"); !errors.Is(err, ErrUnsupportedProvider) {
		t.Errorf("expected ErrUnsupportedProvider, got %v", err)
	}
}

func TestGatewaySpacesCallsByWindow(t *testing.T) {
	window := 50 * time.Millisecond
	gw := newTestGateway(window)
	p := &fakeProvider{name: ProviderChatGPT, draft: validDraft()}
	gw.Register(p, 0.001)

	ctx := context.Background()
	if _, _, err := gw.GenerateReport(ctx, ProviderChatGPT, "s", "u"); err != nil {
		t.Fatalf("first call: %v", err)
	}

	start := time.Now()
	if _, _, err := gw.GenerateReport(ctx, ProviderChatGPT, "s", "u"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if elapsed := time.Since(start); elapsed < window/2 {
		t.Errorf("second call admitted after %v, want at least %v of spacing", elapsed, window/2)
	}
}

func TestGatewayLimiterRespectsContext(t *testing.T) {
	gw := newTestGateway(time.Hour)
	p := &fakeProvider{name: ProviderChatGPT, draft: validDraft()}
	gw.Register(p, 0.001)

	ctx := context.Background()
	if _, _, err := gw.GenerateReport(ctx, ProviderChatGPT, "s", "u"); err != nil {
		t.Fatalf("first call: %v", err)
	}

	cancelCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, _, err := gw.GenerateReport(cancelCtx, ProviderChatGPT, "s", "u")
	if err == nil {
		t.Fatal("expected error when context expires while queued")
	}
	if p.calls != 1 {
		t.Errorf("expired call must not reach the provider, got %d calls", p.calls)
	}
}

func TestGatewayPropagatesProviderErrors(t *testing.T) {
	gw := newTestGateway(time.Millisecond)
	provErr := &ProviderError{Provider: ProviderGroq, Err: errors.New("quota exceeded")}
	gw.Register(&fakeProvider{name: ProviderGroq, err: provErr}, 0.001)

	_, _, err := gw.GenerateReport(context.Background(), ProviderGroq, "s", "u")
	var got *ProviderError
	if !errors.As(err, &got) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}

func TestGatewayChatWithoutBackend(t *testing.T) {
	gw := newTestGateway(time.Millisecond)
	_, _, err := gw.Chat(context.Background(), nil, nil)
	if err == nil {
		t.Fatal("expected error when no chat backend is configured")
	}
}
