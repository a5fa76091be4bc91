package llm

import (
	"context"
	"encoding/json"

	openai "github.com/sashabaranov/go-openai"
)

// ChatGPT generates reports through the OpenAI API using native structured
// output (json_schema response format). It also serves as the conversational
// backend for the RAG chat.
type ChatGPT struct {
	client *openai.Client
	model  string
}

func NewChatGPT(apiKey, model string) *ChatGPT {
	return &ChatGPT{client: openai.NewClient(apiKey), model: model}
}

func (p *ChatGPT) Name() string { return ProviderChatGPT }

func (p *ChatGPT) GenerateReport(ctx context.Context, systemPrompt, userPrompt string) (*ReportDraft, Usage, error) {
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

// Chat implements ChatCompleter with tool support.
func (p *ChatGPT) Chat(ctx context.Context, msgs []ChatMessage, tools []ToolDef) (*ChatResult, Usage, error) {
	req := openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: toOpenAIMessages(msgs),
	}
	for _, t := range tools {
		req.Tools = append(req.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  json.RawMessage(t.Parameters),
			},
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, Usage{}, &ProviderError{Provider: p.Name(), Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, Usage{}, &ProviderError{Provider: p.Name(), Err: errEmptyChoices}
	}

	msg := resp.Choices[0].Message
	result := &ChatResult{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return result, usageFromOpenAI(resp.Usage), nil
}

func toOpenAIMessages(msgs []ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		om := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			om.ToolCalls = append(om.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out = append(out, om)
	}
	return out
}
