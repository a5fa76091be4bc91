// Package llm provides a uniform gateway over interchangeable completion
// providers. Each provider adapter owns its own request shape and
// structured-output mechanism; the gateway owns the closed registry, the
// process-wide spend limiter, per-call timeouts, and the normalized usage and
// price accounting. Transient failures are not retried here; retrying a
// paid, non-idempotent generation call is the caller's decision.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Provider identifiers form a closed set; anything else is rejected before a
// single byte leaves the process.
const (
	ProviderChatGPT = "chatgpt"
	ProviderGemini  = "gemini"
	ProviderGroq    = "groq"
	ProviderXAI     = "xai"
)

// Usage is the normalized token accounting for one provider call. Adapters
// map their native usage fields onto this one shape.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Provider is one interchangeable completion backend capable of producing a
// schema-constrained handoff report.
type Provider interface {
	Name() string
	GenerateReport(ctx context.Context, systemPrompt, userPrompt string) (*ReportDraft, Usage, error)
}

// Gateway dispatches report generation to a registered provider under a
// shared rate limiter and timeout, and exposes the price table used for cost
// estimates.
type Gateway struct {
	providers map[string]Provider
	prices    map[string]float64
	limiter   *Limiter
	timeout   time.Duration
	chat      ChatCompleter
	logger    zerolog.Logger
}

// NewGateway creates a Gateway with an empty registry.
func NewGateway(rateWindow, timeout time.Duration, logger zerolog.Logger) *Gateway {
	return &Gateway{
		providers: make(map[string]Provider),
		prices:    make(map[string]float64),
		limiter:   NewLimiter(rateWindow),
		timeout:   timeout,
		logger:    logger,
	}
}

// Register adds a provider with its price per token.
func (g *Gateway) Register(p Provider, pricePerToken float64) {
	g.providers[p.Name()] = p
	g.prices[p.Name()] = pricePerToken
}

// SetChatCompleter attaches the conversational backend used by Chat.
func (g *Gateway) SetChatCompleter(c ChatCompleter) {
	g.chat = c
}

// Supports reports whether the given provider tag is registered.
func (g *Gateway) Supports(provider string) bool {
	_, ok := g.providers[provider]
	return ok
}

// PricePerToken returns the registered price for a provider.
func (g *Gateway) PricePerToken(provider string) (float64, error) {
	price, ok := g.prices[provider]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
	return price, nil
}

// GenerateReport produces a schema-conforming report draft from the named
// provider. The call blocks in the limiter until the spend window admits it,
// then runs under the gateway timeout.
func (g *Gateway) GenerateReport(ctx context.Context, provider, systemPrompt, userPrompt string) (*ReportDraft, Usage, error) {
	p, ok := g.providers[provider]
	if !ok {
		return nil, Usage{}, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, Usage{}, fmt.Errorf("await rate limiter: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	draft, usage, err := p.GenerateReport(callCtx, systemPrompt, userPrompt)
	if err != nil {
		return nil, Usage{}, err
	}

	g.logger.Info().
		Str("provider", provider).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Int("total_tokens", usage.TotalTokens).
		Dur("latency", time.Since(start)).
		Msg("report generated")

	return draft, usage, nil
}

// Chat runs one conversational completion through the shared limiter and
// timeout. Tool execution is the caller's concern.
func (g *Gateway) Chat(ctx context.Context, msgs []ChatMessage, tools []ToolDef) (*ChatResult, Usage, error) {
	if g.chat == nil {
		return nil, Usage{}, fmt.Errorf("%w: no chat backend configured", ErrUnsupportedProvider)
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, Usage{}, fmt.Errorf("await rate limiter: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	return g.chat.Chat(callCtx, msgs, tools)
}
