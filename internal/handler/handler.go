// Package handler contains the per-intent request handlers. Each handler
// extracts parameters from the user's text, performs the matching tool call,
// records the result in conversation memory, and asks the model to phrase
// the final answer. When required parameters are missing the handler returns
// a clarification message instead of calling any tool.
package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/wayfarer-ai/wayfarer/internal/conversation"
	"github.com/wayfarer-ai/wayfarer/internal/intent"
	"github.com/wayfarer-ai/wayfarer/internal/profile"
	"github.com/wayfarer-ai/wayfarer/internal/tool"
	"github.com/wayfarer-ai/wayfarer/pkg/provider/llm"
)

// Handler processes one routed user request and produces the reply text.
type Handler interface {
	Handle(ctx context.Context, text, imageData string) (string, error)
}

// Deps carries the shared collaborators every handler needs.
type Deps struct {
	Provider llm.Provider
	Memory   *conversation.Memory
	Caller   *tool.Caller
	Profiles *profile.Manager
	UserID   string
}

// streamReply asks the model to phrase the final answer over the full
// conversation, tool results included, and concatenates the stream.
func streamReply(ctx context.Context, d Deps) (string, error) {
	ch, err := d.Provider.StreamCompletion(ctx, llm.CompletionRequest{
		Messages: d.Memory.Messages(),
	})
	if err != nil {
		return "", fmt.Errorf("handler: stream completion: %w", err)
	}
	var b strings.Builder
	for chunk := range ch {
		if chunk.FinishReason == "error" {
			return "", fmt.Errorf("handler: completion stream failed")
		}
		b.WriteString(chunk.Text)
	}
	return b.String(), nil
}

// callAndReply runs one tool call, commits its result to memory, and streams
// the model's phrasing of it. This is the shape almost every handler shares.
func callAndReply(ctx context.Context, d Deps, toolName string, args map[string]any) (string, error) {
	result := d.Caller.Call(ctx, toolName, args)
	d.Memory.AddToolResult(toolName, "", result)
	return streamReply(ctx, d)
}

func paramString(p intent.Params, key string) string {
	s, _ := p[key].(string)
	return s
}
