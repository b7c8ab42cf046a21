// Package agent orchestrates conversation turns: deterministic intent
// routing first, model-driven tool selection as the fallback. One Agent
// serves one conversation; turns are serialized, and every turn commits
// exactly one assistant message to memory, error paths included.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/wayfarer-ai/wayfarer/internal/config"
	"github.com/wayfarer-ai/wayfarer/internal/conversation"
	"github.com/wayfarer-ai/wayfarer/internal/handler"
	"github.com/wayfarer-ai/wayfarer/internal/intent"
	"github.com/wayfarer-ai/wayfarer/internal/observe"
	"github.com/wayfarer-ai/wayfarer/internal/profile"
	"github.com/wayfarer-ai/wayfarer/internal/tool"
	"github.com/wayfarer-ai/wayfarer/pkg/provider/llm"
)

const (
	defaultMaxParallelTools = 3
	defaultToolTimeout      = 30 * time.Second

	// maxToolRounds bounds the model-driven call loop so a model that keeps
	// requesting tools cannot spin forever.
	maxToolRounds = 4
)

// Options configures a new Agent.
type Options struct {
	Provider llm.Provider
	Caller   *tool.Caller
	Registry *tool.Registry
	Intents  *intent.Registry
	Profiles *profile.Manager
	UserID   string

	// SystemPrompt seeds the conversation memory.
	SystemPrompt string

	// Mode selects the routing strategy. Empty means auto.
	Mode config.RoutingMode

	MaxParallelTools int
	ToolTimeout      time.Duration
	Temperature      float64

	Logger  *slog.Logger
	Metrics *observe.Metrics
}

// Agent owns one conversation.
type Agent struct {
	provider llm.Provider
	memory   *conversation.Memory
	caller   *tool.Caller
	registry *tool.Registry
	factory  *handler.Factory
	profiles *profile.Manager
	userID   string
	logger   *slog.Logger
	metrics  *observe.Metrics

	mode             config.RoutingMode
	maxParallelTools int
	toolTimeout      time.Duration
	temperature      float64

	mu sync.Mutex
}

// New creates an agent for a single conversation.
func New(opts Options) *Agent {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = observe.DefaultMetrics()
	}
	if opts.Mode == "" {
		opts.Mode = config.RouteAuto
	}
	if opts.MaxParallelTools <= 0 {
		opts.MaxParallelTools = defaultMaxParallelTools
	}
	if opts.ToolTimeout <= 0 {
		opts.ToolTimeout = defaultToolTimeout
	}

	memory := conversation.New(opts.SystemPrompt)
	deps := handler.Deps{
		Provider: opts.Provider,
		Memory:   memory,
		Caller:   opts.Caller,
		Profiles: opts.Profiles,
		UserID:   opts.UserID,
	}
	return &Agent{
		provider:         opts.Provider,
		memory:           memory,
		caller:           opts.Caller,
		registry:         opts.Registry,
		factory:          handler.NewFactory(deps, opts.Intents),
		profiles:         opts.Profiles,
		userID:           opts.UserID,
		logger:           opts.Logger,
		metrics:          opts.Metrics,
		mode:             opts.Mode,
		maxParallelTools: opts.MaxParallelTools,
		toolTimeout:      opts.ToolTimeout,
		temperature:      opts.Temperature,
	}
}

// HandleTurn processes one user message and returns the reply. The reply is
// always committed to memory before returning, including the apology
// produced on an orchestration failure.
func (a *Agent) HandleTurn(ctx context.Context, text, imageData string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()
	a.memory.AddUser(text)

	route := "llm_tools"
	var (
		reply string
		err   error
	)
	if a.mode != config.RouteTools {
		if h, matched := a.factory.Pick(text, imageData); h != nil {
			route = matched
			a.metrics.RecordIntentMatch(ctx, matched)
			reply, err = h.Handle(ctx, text, imageData)
		} else if a.mode == config.RouteIntents {
			// Deterministic-only mode falls back to plain chat.
			route = "chat"
			reply, err = a.chat(ctx)
		} else {
			reply, err = a.completeWithTools(ctx)
		}
	} else {
		reply, err = a.completeWithTools(ctx)
	}

	a.metrics.TurnDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(observe.Attr("route", route)))
	if err != nil {
		a.logger.ErrorContext(ctx, "turn failed", "route", route, "error", err)
		a.metrics.RecordTurn(ctx, route, "error")
		reply = fmt.Sprintf("抱歉，处理您的请求时出现了问题: %v", err)
		a.memory.AddAssistant(reply)
		return reply
	}

	a.metrics.RecordTurn(ctx, route, "ok")
	a.memory.AddAssistant(reply)
	return reply
}

// Interrupt records that the user cut the assistant off after hearing the
// given prefix of the pending reply.
func (a *Agent) Interrupt(heard string) {
	// No turn lock here: the marker must land while a turn is still in
	// flight. Memory serializes its own state.
	a.memory.HandleInterrupt(heard)
}

// Feedback records a rating-and-comment entry against the user's profile.
// Domain failures come back in the Result envelope, not as errors.
func (a *Agent) Feedback(ctx context.Context, fb profile.Feedback) profile.Result {
	return a.profiles.CollectFeedback(ctx, a.userID, fb)
}

// Memory exposes the conversation memory, mainly for tests and debugging.
func (a *Agent) Memory() *conversation.Memory {
	return a.memory
}

// chat streams a plain completion with no tools offered.
func (a *Agent) chat(ctx context.Context) (string, error) {
	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		Messages:    a.memory.Messages(),
		Temperature: a.temperature,
	})
	if err != nil {
		a.metrics.RecordProviderError(ctx, "llm", "complete")
		return "", fmt.Errorf("agent: chat completion: %w", err)
	}
	return resp.Content, nil
}

// completeWithTools lets the model drive tool selection. Tool calls within a
// round run concurrently, bounded by maxParallelTools; results are committed
// to memory in the order the model requested them.
func (a *Agent) completeWithTools(ctx context.Context) (string, error) {
	for round := 0; round < maxToolRounds; round++ {
		req := llm.CompletionRequest{
			Messages:    a.memory.Messages(),
			Temperature: a.temperature,
		}
		// The last round withholds tools to force a text answer.
		if round < maxToolRounds-1 {
			req.Tools = a.registry.Definitions()
		}

		resp, err := a.provider.Complete(ctx, req)
		if err != nil {
			a.metrics.RecordProviderError(ctx, "llm", "complete")
			return "", fmt.Errorf("agent: completion round %d: %w", round, err)
		}
		if len(resp.ToolCalls) == 0 {
			return resp.Content, nil
		}

		a.memory.AddAssistantToolCalls(resp.Content, resp.ToolCalls)
		results := make([]string, len(resp.ToolCalls))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.maxParallelTools)
		for i, call := range resp.ToolCalls {
			i, call := i, call
			g.Go(func() error {
				callCtx, cancel := context.WithTimeout(gctx, a.toolTimeout)
				defer cancel()
				results[i] = a.caller.CallJSON(callCtx, call.Name, call.Arguments)
				return nil
			})
		}
		// Tool failures surface in-band in the result JSON; the group only
		// propagates context cancellation.
		if err := g.Wait(); err != nil {
			return "", fmt.Errorf("agent: tool fan-out: %w", err)
		}
		for i, call := range resp.ToolCalls {
			a.memory.AddRawToolResult(call.Name, call.ID, results[i])
		}
	}
	return "", fmt.Errorf("agent: model kept requesting tools after %d rounds", maxToolRounds)
}
