package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

const xaiBaseURL = "https://api.x.ai/v1"

// XAI generates reports through the xAI API, which is OpenAI-compatible and
// supports the json_schema response format natively.
type XAI struct {
	client *openai.Client
	model  string
}

func NewXAI(apiKey, model string) *XAI {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = xaiBaseURL
	return &XAI{client: openai.NewClientWithConfig(cfg), model: model}
}

func (p *XAI) Name() string { return ProviderXAI }

func (p *XAI) GenerateReport(ctx context.Context, systemPrompt, userPrompt string) (*ReportDraft, Usage, error) {
	content, usage, err := completeJSON(ctx, p.client, p.Name(), p.model, systemPrompt, userPrompt, jsonSchemaFormat())
	if err != nil {
		return nil, Usage{}, err
	}
	draft, err := decodeDraft(p.Name(), content)
	if err != nil {
		return nil, Usage{}, err
	}
	return draft, usage, nil
}
