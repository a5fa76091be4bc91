package llm

import (
	"context"
	"encoding/json"
)

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatMessage is one turn of a conversational exchange.
type ChatMessage struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolCall is a model-requested invocation of a declared tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolDef declares a tool the model may call, with a JSON Schema for its
// arguments.
type ToolDef struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// ChatResult is the model's reply to a chat invocation: either final content
// or one or more tool-call requests.
type ChatResult struct {
	Content   string
	ToolCalls []ToolCall
}

// ChatCompleter is a conversational completion backend with tool support.
type ChatCompleter interface {
	Chat(ctx context.Context, msgs []ChatMessage, tools []ToolDef) (*ChatResult, Usage, error)
}
