package chat

import (
	"context"
)

// Turn is one persisted conversation entry. Tool calls and tool results are
// persisted alongside user and assistant turns so a resumed session replays
// exactly what the model saw.
type Turn struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	ToolCalls  []ToolCallRecord `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

// ToolCallRecord is a persisted tool invocation issued by the assistant.
type ToolCallRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// CheckpointStore persists conversation history keyed by opaque thread id.
// Load returns (nil, nil) for a thread that has never been seen.
type CheckpointStore interface {
	Load(ctx context.Context, threadID string) ([]Turn, error)
	Save(ctx context.Context, threadID string, turns []Turn) error
}
