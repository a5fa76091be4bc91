package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Document is one retrieved knowledge-base chunk.
type Document struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

// Retriever fetches knowledge-base passages relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Document, error)
}

// HTTPRetriever queries the retrieval service over HTTP.
type HTTPRetriever struct {
	client *resty.Client
	topK   int
}

func NewHTTPRetriever(baseURL string, topK int) *HTTPRetriever {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json")
	return &HTTPRetriever{client: client, topK: topK}
}

type retrieveRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type retrieveResponse struct {
	Documents []Document `json:"documents"`
}

func (r *HTTPRetriever) Retrieve(ctx context.Context, query string) ([]Document, error) {
	var out retrieveResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(retrieveRequest{Query: query, TopK: r.topK}).
		SetResult(&out).
		Post("/retrieve")
	if err != nil {
		return nil, fmt.Errorf("retrieval request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("retrieval service: status %d: %s", resp.StatusCode(), resp.String())
	}
	return out.Documents, nil
}

// SerializeDocuments renders retrieved documents into the block the model
// sees as the tool result.
func SerializeDocuments(docs []Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, fmt.Sprintf("Source: %s\nContent: %s", d.Source, d.Content))
	}
	return strings.Join(parts, "\n\n")
}
