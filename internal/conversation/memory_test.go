package conversation_test

import (
	"strings"
	"testing"

	"github.com/wayfarer-ai/wayfarer/internal/conversation"
	"github.com/wayfarer-ai/wayfarer/pkg/types"
)

func TestNewSeedsSystemPrompt(t *testing.T) {
	t.Parallel()
	m := conversation.New("你是一个旅行助手")

	msgs := m.Messages()
	if len(msgs) != 1 {
		t.Fatalf("len = %d, want 1", len(msgs))
	}
	if msgs[0].Role != types.RoleSystem || msgs[0].Content != "你是一个旅行助手" {
		t.Errorf("first message = %+v, want system prompt", msgs[0])
	}
}

func TestAppendOrder(t *testing.T) {
	t.Parallel()
	m := conversation.New("system")
	m.AddUser("昆明的天气怎么样")
	m.AddAssistantToolCalls("", []types.ToolCall{{ID: "call_1", Name: "get_current_temperature"}})
	m.AddToolResult("get_current_temperature", "call_1", map[string]any{"temperature": 21.0})
	m.AddAssistant("昆明现在21度。")

	msgs := m.Messages()
	wantRoles := []string{types.RoleSystem, types.RoleUser, types.RoleAssistant, types.RoleTool, types.RoleAssistant}
	if len(msgs) != len(wantRoles) {
		t.Fatalf("len = %d, want %d", len(msgs), len(wantRoles))
	}
	for i, want := range wantRoles {
		if msgs[i].Role != want {
			t.Errorf("messages[%d].Role = %s, want %s", i, msgs[i].Role, want)
		}
	}

	toolMsg := msgs[3]
	if toolMsg.ToolName != "get_current_temperature" || toolMsg.ToolCallID != "call_1" {
		t.Errorf("tool message = %+v, want name and call id set", toolMsg)
	}
	if !strings.Contains(toolMsg.Content, "temperature") {
		t.Errorf("tool content = %q, want serialized result", toolMsg.Content)
	}
}

func TestHandleInterruptTruncatesAssistant(t *testing.T) {
	t.Parallel()
	m := conversation.New("system")
	m.AddUser("介绍一下石林")
	m.AddAssistant("石林位于云南省昆明市，是世界自然遗产")

	m.HandleInterrupt("石林位于云南省")

	msgs := m.Messages()
	if len(msgs) != 4 {
		t.Fatalf("len = %d, want 4", len(msgs))
	}
	if got := msgs[2].Content; got != "石林位于云南省..." {
		t.Errorf("assistant content = %q, want truncated with ellipsis", got)
	}
	last := msgs[3]
	if last.Role != types.RoleSystem || last.Content != "[用户打断了对话]" {
		t.Errorf("last message = %+v, want interrupt marker", last)
	}
}

func TestHandleInterruptWithoutAssistantTail(t *testing.T) {
	t.Parallel()
	m := conversation.New("system")
	m.AddUser("介绍一下石林")

	m.HandleInterrupt("石林")

	// No assistant reply is fabricated; only the marker is appended.
	msgs := m.Messages()
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	if msgs[1].Role != types.RoleUser {
		t.Errorf("messages[1] = %+v, want untouched user message", msgs[1])
	}
	last := msgs[2]
	if last.Role != types.RoleSystem || last.Content != "[用户打断了对话]" {
		t.Errorf("last message = %+v, want interrupt marker", last)
	}
}

func TestMessagesReturnsCopy(t *testing.T) {
	t.Parallel()
	m := conversation.New("system")
	m.AddUser("hello")

	msgs := m.Messages()
	msgs[0].Content = "mutated"

	if got := m.Messages()[0].Content; got != "system" {
		t.Errorf("history mutated through copy: %q", got)
	}
}
