package llm

import (
	"context"
	"encoding/json"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

var errEmptyChoices = errors.New("response contained no choices")

// completeJSON runs one OpenAI-style chat completion and returns the raw
// content plus normalized usage. Shared by the three OpenAI-compatible
// adapters; each keeps its own response-format choice.
func completeJSON(ctx context.Context, client *openai.Client, provider, model, systemPrompt, userPrompt string, format *openai.ChatCompletionResponseFormat) (string, Usage, error) {
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature:    0,
		ResponseFormat: format,
	})
	if err != nil {
		return "", Usage{}, &ProviderError{Provider: provider, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", Usage{}, &ProviderError{Provider: provider, Err: errEmptyChoices}
	}
	return resp.Choices[0].Message.Content, usageFromOpenAI(resp.Usage), nil
}

// usageFromOpenAI maps the prompt_tokens/completion_tokens/total_tokens shape
// onto the normalized Usage record.
func usageFromOpenAI(u openai.Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

// jsonSchemaFormat is the schema-aware response format used by providers with
// native structured-output support.
func jsonSchemaFormat() *openai.ChatCompletionResponseFormat {
	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   "handoff_report",
			Schema: json.RawMessage(reportSchemaJSON),
			Strict: true,
		},
	}
}
