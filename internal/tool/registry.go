// Package tool manages the callable tools offered to the language model:
// a registry of tool definitions with their implementations, a caller that
// dispatches model-requested invocations, and an importer that mounts tools
// exposed by external MCP servers.
package tool

import (
	"context"
	"fmt"
	"sync"

	"github.com/wayfarer-ai/wayfarer/pkg/types"
)

// Func is a tool implementation. Arguments arrive decoded from the model's
// JSON call. The returned map is serialized back to the model verbatim;
// implementations report domain failures in-band (an "error" key) and
// reserve the error return for infrastructure problems.
type Func func(ctx context.Context, args map[string]any) (map[string]any, error)

// Registry maps tool names to definitions and implementations. Registration
// order is preserved: the definition list presented to the model is stable
// across runs.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	tools  map[string]registered
	frozen bool
}

type registered struct {
	def types.ToolDefinition
	fn  Func
}

// NewRegistry returns an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]registered)}
}

// Register adds a tool. It fails on duplicate names, empty names, nil
// implementations, and after Freeze has been called.
func (r *Registry) Register(def types.ToolDefinition, fn Func) error {
	if def.Name == "" {
		return fmt.Errorf("tool: register: empty tool name")
	}
	if fn == nil {
		return fmt.Errorf("tool: register %q: nil implementation", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("tool: register %q: registry is frozen", def.Name)
	}
	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("tool: register %q: already registered", def.Name)
	}
	r.tools[def.Name] = registered{def: def, fn: fn}
	r.order = append(r.order, def.Name)
	return nil
}

// Freeze closes the registry to further registration. Called once wiring is
// complete so the tool set cannot change while conversations are in flight.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Lookup returns the implementation registered under name.
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return reg.fn, true
}

// Definitions returns every registered tool definition in registration order.
func (r *Registry) Definitions() []types.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]types.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].def)
	}
	return defs
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
