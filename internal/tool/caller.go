package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/wayfarer-ai/wayfarer/internal/observe"
)

// redactedArgKeys are argument names whose values are replaced in call
// bookkeeping. Base64 image payloads would otherwise dominate logs.
var redactedArgKeys = map[string]bool{
	"image_data": true,
}

// CallInfo describes the most recent tool invocation.
type CallInfo struct {
	Name string
	Args map[string]any
	Time time.Time
}

// Caller dispatches tool invocations against a registry. Failures never
// propagate as errors to the model loop: unknown tools, panics, and
// implementation errors all come back as an in-band error result, so a bad
// tool call degrades one answer rather than aborting the turn.
type Caller struct {
	registry *Registry
	logger   *slog.Logger
	metrics  *observe.Metrics

	mu        sync.Mutex
	callCount int
	lastCall  *CallInfo
}

// NewCaller returns a caller dispatching against reg. A nil logger falls
// back to slog.Default and nil metrics to the package default instruments.
func NewCaller(reg *Registry, logger *slog.Logger, metrics *observe.Metrics) *Caller {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Caller{registry: reg, logger: logger, metrics: metrics}
}

// Call invokes the named tool. Bookkeeping is recorded before the tool runs
// so that an interrupted or crashed invocation still shows up as the last
// attempted call.
func (c *Caller) Call(ctx context.Context, name string, args map[string]any) (result map[string]any) {
	c.recordCall(name, args)
	c.logger.DebugContext(ctx, "calling tool", "tool", name)

	start := time.Now()
	status := "ok"
	defer func() {
		if r := recover(); r != nil {
			c.logger.ErrorContext(ctx, "tool panicked", "tool", name, "panic", r)
			result = map[string]any{"error": fmt.Sprintf("工具调用失败: %v", r)}
			status = "panic"
		}
		c.metrics.ToolExecutionDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(observe.Attr("tool", name)))
		c.metrics.RecordToolCall(ctx, name, status)
	}()

	fn, ok := c.registry.Lookup(name)
	if !ok {
		status = "unknown"
		return map[string]any{"error": fmt.Sprintf("未知工具: %s", name)}
	}

	out, err := fn(ctx, args)
	if err != nil {
		c.logger.ErrorContext(ctx, "tool failed", "tool", name, "error", err)
		status = "error"
		return map[string]any{"error": fmt.Sprintf("工具调用失败: %v", err)}
	}
	return out
}

// CallJSON invokes the named tool with JSON-encoded arguments as produced by
// an LLM tool call, returning the JSON-encoded result.
func (c *Caller) CallJSON(ctx context.Context, name, arguments string) string {
	args := map[string]any{}
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			c.recordCall(name, nil)
			c.logger.ErrorContext(ctx, "bad tool arguments", "tool", name, "error", err)
			c.metrics.RecordToolCall(ctx, name, "bad_arguments")
			return encodeResult(map[string]any{"error": fmt.Sprintf("工具调用失败: 参数解析错误: %v", err)})
		}
	}
	return encodeResult(c.Call(ctx, name, args))
}

// CallCount returns the number of tool invocations attempted so far.
func (c *Caller) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.callCount
}

// LastCall returns a copy of the bookkeeping for the most recent invocation,
// or nil if no tool has been called yet.
func (c *Caller) LastCall() *CallInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastCall == nil {
		return nil
	}
	info := *c.lastCall
	return &info
}

func (c *Caller) recordCall(name string, args map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callCount++
	c.lastCall = &CallInfo{Name: name, Args: redactArgs(args), Time: time.Now()}
}

// redactArgs copies args, replacing payload values that must not be retained.
func redactArgs(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		if redactedArgKeys[k] {
			out[k] = "[redacted]"
			continue
		}
		out[k] = v
	}
	return out
}

func encodeResult(result map[string]any) string {
	data, err := json.Marshal(result)
	if err != nil {
		return `{"error":"工具调用失败: 结果序列化错误"}`
	}
	return string(data)
}
