package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// Groq generates reports through Groq's OpenAI-compatible API. Groq has no
// schema-aware response format, so the schema is embedded in the system
// prompt under json_object mode and the output is validated after parsing.
type Groq struct {
	client *openai.Client
	model  string
}

func NewGroq(apiKey, model string) *Groq {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = groqBaseURL
	return &Groq{client: openai.NewClientWithConfig(cfg), model: model}
}

func (p *Groq) Name() string { return ProviderGroq }

func (p *Groq) GenerateReport(ctx context.Context, systemPrompt, userPrompt string) (*ReportDraft, Usage, error) {
	format := &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}
	content, usage, err := completeJSON(ctx, p.client, p.Name(), p.model,
		systemPrompt+"\n\n"+schemaInstruction, userPrompt, format)
	if err != nil {
		return nil, Usage{}, err
	}
	draft, err := decodeDraft(p.Name(), content)
	if err != nil {
		return nil, Usage{}, err
	}
	return draft, usage, nil
}
