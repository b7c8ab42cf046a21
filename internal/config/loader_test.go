package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/wayfarer-ai/wayfarer/internal/config"
)

func TestLoadFromReader_Defaults(t *testing.T) {
	t.Parallel()
	yaml := `
llm:
  name: openai
  model: gpt-4o
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want %q", cfg.Server.ListenAddr, ":8080")
	}
	if cfg.Routing.Mode != config.RouteAuto {
		t.Errorf("Routing.Mode = %q, want %q", cfg.Routing.Mode, config.RouteAuto)
	}
	if cfg.Routing.MaxParallelTools != 3 {
		t.Errorf("MaxParallelTools = %d, want 3", cfg.Routing.MaxParallelTools)
	}
	if cfg.Routing.ToolTimeout.Std() != 30*time.Second {
		t.Errorf("ToolTimeout = %s, want 30s", cfg.Routing.ToolTimeout.Std())
	}
	if cfg.Profiles.Backend != config.ProfileMemory {
		t.Errorf("Profiles.Backend = %q, want memory", cfg.Profiles.Backend)
	}
	if cfg.Persona.DefaultTripDays != 3 {
		t.Errorf("DefaultTripDays = %d, want 3", cfg.Persona.DefaultTripDays)
	}
}

func TestLoadFromReader_MissingLLM(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  listen_addr: ":9000"
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for missing llm config, got nil")
	}
	if !strings.Contains(err.Error(), "llm.name") {
		t.Errorf("error should mention llm.name, got: %v", err)
	}
	if !strings.Contains(err.Error(), "llm.model") {
		t.Errorf("error should mention llm.model, got: %v", err)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()
	yaml := `
llm:
  name: openai
  model: gpt-4o
nonsense_key: true
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unknown top-level field, got nil")
	}
}

func TestLoadFromReader_InvalidRoutingMode(t *testing.T) {
	t.Parallel()
	yaml := `
llm:
  name: openai
  model: gpt-4o
routing:
  mode: magic
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid routing mode, got nil")
	}
	if !strings.Contains(err.Error(), "routing.mode") {
		t.Errorf("error should mention routing.mode, got: %v", err)
	}
}

func TestLoadFromReader_ToolTimeoutString(t *testing.T) {
	t.Parallel()
	yaml := `
llm:
  name: deepseek
  model: deepseek-chat
routing:
  tool_timeout: 45s
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Routing.ToolTimeout.Std() != 45*time.Second {
		t.Errorf("ToolTimeout = %s, want 45s", cfg.Routing.ToolTimeout.Std())
	}
}

func TestLoadFromReader_LLMFallbacks(t *testing.T) {
	t.Parallel()
	yaml := `
llm:
  name: openai
  model: gpt-4o
  fallbacks:
    - name: deepseek
      model: deepseek-chat
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if len(cfg.LLM.Fallbacks) != 1 || cfg.LLM.Fallbacks[0].Name != "deepseek" {
		t.Errorf("Fallbacks = %+v, want one deepseek entry", cfg.LLM.Fallbacks)
	}
}

func TestLoadFromReader_FallbackRequiresModel(t *testing.T) {
	t.Parallel()
	yaml := `
llm:
  name: openai
  model: gpt-4o
  fallbacks:
    - name: deepseek
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for fallback without model, got nil")
	}
	if !strings.Contains(err.Error(), "llm.fallbacks[0].model") {
		t.Errorf("error should mention llm.fallbacks[0].model, got: %v", err)
	}
}

func TestLoadFromReader_FileBackendRequiresPath(t *testing.T) {
	t.Parallel()
	yaml := `
llm:
  name: openai
  model: gpt-4o
profiles:
  backend: file
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for file backend without path, got nil")
	}
	if !strings.Contains(err.Error(), "profiles.path") {
		t.Errorf("error should mention profiles.path, got: %v", err)
	}
}

func TestLoadFromReader_DuplicateMCPServers(t *testing.T) {
	t.Parallel()
	yaml := `
llm:
  name: openai
  model: gpt-4o
mcp:
  servers:
    - name: maps
      transport: stdio
      command: maps-server
    - name: maps
      transport: streamable-http
      url: https://mcp.example.com/mcp
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for duplicate MCP server names, got nil")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("error should mention duplicate, got: %v", err)
	}
}

func TestValidate_MCPStdioRequiresCommand(t *testing.T) {
	t.Parallel()
	yaml := `
llm:
  name: openai
  model: gpt-4o
mcp:
  servers:
    - name: maps
      transport: stdio
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for stdio transport without command, got nil")
	}
	if !strings.Contains(err.Error(), "command") {
		t.Errorf("error should mention command, got: %v", err)
	}
}
