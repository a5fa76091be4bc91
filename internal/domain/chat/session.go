package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nursehub/nursing-assistant/internal/platform/llm"
)

const ragSystemPrompt = `You are a clinical assistant for nurses. Answer questions using the
retrieve tool to look up the medical knowledge base before answering. Ground every answer in the
retrieved passages; when the knowledge base has nothing relevant, say so instead of guessing.
Keep answers short and practical. This is decision support, not a diagnosis.`

const retrieveToolName = "retrieve"

var retrieveToolParams = json.RawMessage(`{
  "type": "object",
  "properties": {
    "query": {"type": "string", "description": "What to look up in the medical knowledge base."}
  },
  "required": ["query"]
}`)

// ChatModel is the slice of the provider gateway the session manager needs.
type ChatModel interface {
	Chat(ctx context.Context, msgs []llm.ChatMessage, tools []llm.ToolDef) (*llm.ChatResult, llm.Usage, error)
}

// Manager runs checkpointed conversations. Persisted history grows
// append-only; the model only ever sees the trimmed tail of it. Turns for the
// same thread are serialized so concurrent requests cannot interleave their
// history updates.
type Manager struct {
	model         ChatModel
	retriever     Retriever
	store         CheckpointStore
	historyLimit  int
	maxToolRounds int
	logger        zerolog.Logger

	mu      sync.Mutex
	threads map[string]*sync.Mutex
}

func NewManager(model ChatModel, retriever Retriever, store CheckpointStore, historyLimit, maxToolRounds int, logger zerolog.Logger) *Manager {
	return &Manager{
		model:         model,
		retriever:     retriever,
		store:         store,
		historyLimit:  historyLimit,
		maxToolRounds: maxToolRounds,
		logger:        logger,
		threads:       make(map[string]*sync.Mutex),
	}
}

func (m *Manager) threadLock(threadID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.threads[threadID]
	if !ok {
		lock = &sync.Mutex{}
		m.threads[threadID] = lock
	}
	return lock
}

// Handle appends the user message to the thread, runs the model with the
// retrieve tool until it produces an answer or the tool round budget runs
// out, and persists the full updated history before returning the answer.
func (m *Manager) Handle(ctx context.Context, threadID, message string) (string, error) {
	lock := m.threadLock(threadID)
	lock.Lock()
	defer lock.Unlock()

	full, err := m.store.Load(ctx, threadID)
	if err != nil {
		return "", err
	}
	working := trim(full, m.historyLimit)

	userTurn := Turn{Role: llm.RoleUser, Content: message}
	full = append(full, userTurn)
	working = append(working, userTurn)

	tools := []llm.ToolDef{{
		Name:        retrieveToolName,
		Description: "Retrieve information related to a query.",
		Parameters:  retrieveToolParams,
	}}

	var answer string
	for round := 0; ; round++ {
		result, _, err := m.model.Chat(ctx, toMessages(working), tools)
		if err != nil {
			return "", err
		}

		if len(result.ToolCalls) == 0 || round >= m.maxToolRounds {
			// On budget exhaustion any pending tool calls are dropped from
			// the record; an assistant turn with unanswered tool calls would
			// poison every later completion on this thread.
			if len(result.ToolCalls) > 0 {
				m.logger.Warn().
					Str("thread_id", threadID).
					Int("rounds", round).
					Msg("tool round budget exhausted")
			}
			assistant := Turn{Role: llm.RoleAssistant, Content: result.Content}
			full = append(full, assistant)
			working = append(working, assistant)
			answer = result.Content
			break
		}

		assistant := Turn{Role: llm.RoleAssistant, Content: result.Content}
		for _, tc := range result.ToolCalls {
			assistant.ToolCalls = append(assistant.ToolCalls, ToolCallRecord{
				ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments,
			})
		}
		full = append(full, assistant)
		working = append(working, assistant)

		for _, tc := range result.ToolCalls {
			toolTurn, err := m.runTool(ctx, tc)
			if err != nil {
				return "", err
			}
			full = append(full, toolTurn)
			working = append(working, toolTurn)
		}
	}

	if err := m.store.Save(ctx, threadID, full); err != nil {
		return "", fmt.Errorf("persist thread %s: %w", threadID, err)
	}
	return answer, nil
}

func (m *Manager) runTool(ctx context.Context, tc llm.ToolCall) (Turn, error) {
	if tc.Name != retrieveToolName {
		return Turn{
			Role:       llm.RoleTool,
			Content:    fmt.Sprintf("unknown tool %q", tc.Name),
			ToolCallID: tc.ID,
		}, nil
	}

	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
		return Turn{
			Role:       llm.RoleTool,
			Content:    "invalid tool arguments: " + err.Error(),
			ToolCallID: tc.ID,
		}, nil
	}

	docs, err := m.retriever.Retrieve(ctx, args.Query)
	if err != nil {
		return Turn{}, fmt.Errorf("retrieve %q: %w", args.Query, err)
	}
	return Turn{
		Role:       llm.RoleTool,
		Content:    SerializeDocuments(docs),
		ToolCallID: tc.ID,
	}, nil
}

// trim keeps at most the last limit turns of the working set. Persisted
// history is never trimmed. The window must not open on tool results whose
// calling assistant turn was cut away; such orphans are skipped, which can
// only shrink the window further.
func trim(turns []Turn, limit int) []Turn {
	start := 0
	if len(turns) > limit {
		start = len(turns) - limit
	}
	for start < len(turns) && turns[start].Role == llm.RoleTool {
		start++
	}
	out := make([]Turn, len(turns)-start)
	copy(out, turns[start:])
	return out
}

func toMessages(turns []Turn) []llm.ChatMessage {
	msgs := make([]llm.ChatMessage, 0, len(turns)+1)
	msgs = append(msgs, llm.ChatMessage{Role: llm.RoleSystem, Content: ragSystemPrompt})
	for _, t := range turns {
		msg := llm.ChatMessage{Role: t.Role, Content: t.Content, ToolCallID: t.ToolCallID}
		for _, tc := range t.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments})
		}
		msgs = append(msgs, msg)
	}
	return msgs
}
