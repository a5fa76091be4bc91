package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Gemini generates reports through the Google Generative Language REST API
// using its native responseSchema constraint. Its usage metadata uses
// different field names than the OpenAI-compatible providers
// (promptTokenCount/candidatesTokenCount/totalTokenCount) and is normalized
// here.
type Gemini struct {
	client *resty.Client
	model  string
}

func NewGemini(apiKey, model string) *Gemini {
	client := resty.New().
		SetBaseURL(geminiBaseURL).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", apiKey)
	return &Gemini{client: client, model: model}
}

func (p *Gemini) Name() string { return ProviderGemini }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float64                `json:"temperature"`
	ResponseMIMEType string                 `json:"responseMimeType"`
	ResponseSchema   map[string]interface{} `json:"responseSchema,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func (p *Gemini) GenerateReport(ctx context.Context, systemPrompt, userPrompt string) (*ReportDraft, Usage, error) {
	req := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: userPrompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      0,
			ResponseMIMEType: "application/json",
			ResponseSchema:   geminiReportSchema(),
		},
	}

	var out geminiResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/models/" + p.model + ":generateContent")
	if err != nil {
		return nil, Usage{}, &ProviderError{Provider: p.Name(), Err: err}
	}
	if resp.IsError() {
		return nil, Usage{}, &ProviderError{
			Provider: p.Name(),
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()),
		}
	}
	if len(out.Candidates) == 0 {
		return nil, Usage{}, &ProviderError{Provider: p.Name(), Err: errors.New("response contained no candidates")}
	}

	var sb strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	draft, err := decodeDraft(p.Name(), sb.String())
	if err != nil {
		return nil, Usage{}, err
	}

	usage := Usage{
		PromptTokens:     out.UsageMetadata.PromptTokenCount,
		CompletionTokens: out.UsageMetadata.CandidatesTokenCount,
		TotalTokens:      out.UsageMetadata.TotalTokenCount,
	}
	return draft, usage, nil
}

// geminiReportSchema is the report schema in the OpenAPI subset the
// Generative Language API accepts for responseSchema.
func geminiReportSchema() map[string]interface{} {
	stringArray := map[string]interface{}{
		"type":  "ARRAY",
		"items": map[string]interface{}{"type": "STRING"},
	}
	return map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"situation": map[string]interface{}{
				"type": "OBJECT",
				"properties": map[string]interface{}{
					"patient_name":             map[string]interface{}{"type": "STRING"},
					"mrn":                      map[string]interface{}{"type": "STRING"},
					"age":                      map[string]interface{}{"type": "INTEGER"},
					"gender":                   map[string]interface{}{"type": "STRING"},
					"room_number":              map[string]interface{}{"type": "STRING"},
					"admission_date":           map[string]interface{}{"type": "STRING"},
					"list_situations_feedback": stringArray,
				},
				"required": []string{"patient_name", "mrn", "age", "gender", "room_number", "admission_date", "list_situations_feedback"},
			},
			"background": map[string]interface{}{
				"type": "OBJECT",
				"properties": map[string]interface{}{
					"list_backgrounds": stringArray,
				},
				"required": []string{"list_backgrounds"},
			},
			"assessment": map[string]interface{}{
				"type": "OBJECT",
				"properties": map[string]interface{}{
					"list_assessments": stringArray,
				},
				"required": []string{"list_assessments"},
			},
			"recommendation": map[string]interface{}{
				"type": "OBJECT",
				"properties": map[string]interface{}{
					"list_recommendations": stringArray,
				},
				"required": []string{"list_recommendations"},
			},
			"reported_by": map[string]interface{}{
				"type": "OBJECT",
				"properties": map[string]interface{}{
					"nurse":          map[string]interface{}{"type": "STRING"},
					"license_number": map[string]interface{}{"type": "STRING"},
				},
				"required": []string{"nurse", "license_number"},
			},
		},
		"required": []string{"situation", "background", "assessment", "recommendation", "reported_by"},
	}
}
