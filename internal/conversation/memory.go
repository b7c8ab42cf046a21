// Package conversation maintains per-conversation message history. History
// is append-only and always starts with the system prompt; it is the exact
// sequence presented to the LLM on every completion, so mutation is limited
// to the one interrupt case where a partially spoken reply must be marked.
package conversation

import (
	"encoding/json"
	"sync"

	"github.com/wayfarer-ai/wayfarer/pkg/types"
)

// interruptMarker is appended as a system message when the user cuts off an
// in-flight reply, so the model knows the previous answer was not fully
// delivered.
const interruptMarker = "[用户打断了对话]"

// Memory is a thread-safe conversation history. The system prompt passed to
// New is pinned as the first message for the life of the conversation.
type Memory struct {
	mu       sync.Mutex
	messages []types.Message
}

// New returns a history seeded with the system prompt.
func New(systemPrompt string) *Memory {
	return &Memory{
		messages: []types.Message{{Role: types.RoleSystem, Content: systemPrompt}},
	}
}

// AddUser appends a user message.
func (m *Memory) AddUser(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, types.Message{Role: types.RoleUser, Content: content})
}

// AddAssistant appends an assistant message.
func (m *Memory) AddAssistant(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, types.Message{Role: types.RoleAssistant, Content: content})
}

// AddAssistantToolCalls appends an assistant message that requests tool
// invocations.
func (m *Memory) AddAssistantToolCalls(content string, calls []types.ToolCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, types.Message{
		Role:      types.RoleAssistant,
		Content:   content,
		ToolCalls: calls,
	})
}

// AddToolResult appends a tool-role message carrying the JSON-serialized
// result of the named tool. callID links the message to the assistant tool
// call it answers; it is empty for deterministic-route invocations that
// bypass the model.
func (m *Memory) AddToolResult(toolName, callID string, result map[string]any) {
	content, err := json.Marshal(result)
	if err != nil {
		content = []byte(`{"error":"结果序列化错误"}`)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, types.Message{
		Role:       types.RoleTool,
		Content:    string(content),
		ToolName:   toolName,
		ToolCallID: callID,
	})
}

// AddRawToolResult appends a tool-role message whose content is already
// serialized.
func (m *Memory) AddRawToolResult(toolName, callID, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, types.Message{
		Role:       types.RoleTool,
		Content:    content,
		ToolName:   toolName,
		ToolCallID: callID,
	})
}

// HandleInterrupt records that the user cut off the assistant mid-reply.
// heard is the portion of the reply actually delivered; a trailing assistant
// message is truncated to it, and a system marker notes the interruption.
// Without an assistant tail only the marker is appended.
func (m *Memory) HandleInterrupt(heard string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if last := len(m.messages) - 1; last >= 0 && m.messages[last].Role == types.RoleAssistant {
		m.messages[last].Content = heard + "..."
	}
	m.messages = append(m.messages, types.Message{Role: types.RoleSystem, Content: interruptMarker})
}

// Messages returns a copy of the history in order.
func (m *Memory) Messages() []types.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Len returns the number of messages including the system prompt.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}
