package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// ValidLLMProviders lists known LLM provider names.
// Used by [Validate] to warn about unrecognised names.
var ValidLLMProviders = []string{
	"openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq", "llamacpp",
}

// Defaults applied by [Validate] when the corresponding field is unset.
const (
	DefaultMaxParallelTools = 3
	DefaultToolTimeout      = 30 * time.Second
	DefaultTripDays         = 3
	DefaultListenAddr       = ":8080"
)

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and validates
// the result. Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values and fills in
// defaults for unset fields. It returns a joined error listing all validation
// failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.TLS != nil {
		if cfg.Server.TLS.CertFile == "" || cfg.Server.TLS.KeyFile == "" {
			errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
		}
	}

	// LLM provider
	if cfg.LLM.Name == "" {
		errs = append(errs, errors.New("llm.name is required"))
	} else if !slices.Contains(ValidLLMProviders, cfg.LLM.Name) {
		slog.Warn("unknown LLM provider name, may be a typo or third-party provider",
			"name", cfg.LLM.Name,
			"known", ValidLLMProviders,
		)
	}
	if cfg.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required"))
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature %.2f is out of range [0, 2]", cfg.LLM.Temperature))
	}
	for i, fb := range cfg.LLM.Fallbacks {
		prefix := fmt.Sprintf("llm.fallbacks[%d]", i)
		if fb.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if fb.Model == "" {
			errs = append(errs, fmt.Errorf("%s.model is required", prefix))
		}
		if len(fb.Fallbacks) > 0 {
			errs = append(errs, fmt.Errorf("%s.fallbacks must not be nested", prefix))
		}
	}

	// Routing
	if cfg.Routing.Mode == "" {
		cfg.Routing.Mode = RouteAuto
	}
	if !cfg.Routing.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("routing.mode %q is invalid; valid values: auto, intents, tools", cfg.Routing.Mode))
	}
	if cfg.Routing.MaxParallelTools < 0 {
		errs = append(errs, fmt.Errorf("routing.max_parallel_tools must not be negative, got %d", cfg.Routing.MaxParallelTools))
	}
	if cfg.Routing.MaxParallelTools == 0 {
		cfg.Routing.MaxParallelTools = DefaultMaxParallelTools
	}
	if cfg.Routing.ToolTimeout < 0 {
		errs = append(errs, fmt.Errorf("routing.tool_timeout must not be negative, got %s", cfg.Routing.ToolTimeout.Std()))
	}
	if cfg.Routing.ToolTimeout == 0 {
		cfg.Routing.ToolTimeout = Duration(DefaultToolTimeout)
	}

	// External services
	if cfg.Amap.APIKey == "" {
		slog.Warn("amap.api_key is empty; weather, traffic, route, and facility tools will be unavailable")
	}
	if cfg.Vision.APIKey == "" || cfg.Vision.SecretKey == "" {
		slog.Warn("vision credentials are incomplete; landmark recognition will be unavailable")
	}

	// Profiles
	if cfg.Profiles.Backend == "" {
		cfg.Profiles.Backend = ProfileMemory
	}
	if !cfg.Profiles.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("profiles.backend %q is invalid; valid values: memory, file, postgres", cfg.Profiles.Backend))
	}
	if cfg.Profiles.Backend == ProfileFile && cfg.Profiles.Path == "" {
		errs = append(errs, errors.New("profiles.path is required when profiles.backend is file"))
	}
	if cfg.Profiles.Backend == ProfilePostgres && cfg.Profiles.PostgresDSN == "" {
		errs = append(errs, errors.New("profiles.postgres_dsn is required when profiles.backend is postgres"))
	}

	// Persona
	if cfg.Persona.DefaultTripDays < 0 {
		errs = append(errs, fmt.Errorf("persona.default_trip_days must not be negative, got %d", cfg.Persona.DefaultTripDays))
	}
	if cfg.Persona.DefaultTripDays == 0 {
		cfg.Persona.DefaultTripDays = DefaultTripDays
	}

	// MCP servers
	mcpNamesSeen := make(map[string]int, len(cfg.MCP.Servers))
	for i, srv := range cfg.MCP.Servers {
		prefix := fmt.Sprintf("mcp.servers[%d]", i)
		if srv.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		} else {
			if prev, ok := mcpNamesSeen[srv.Name]; ok {
				errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of mcp.servers[%d]", prefix, srv.Name, prev))
			}
			mcpNamesSeen[srv.Name] = i
		}
		if srv.Transport != "" && !srv.Transport.IsValid() {
			errs = append(errs, fmt.Errorf("%s.transport %q is invalid; valid values: stdio, streamable-http", prefix, srv.Transport))
		}
		if srv.Transport == MCPTransportStdio && srv.Command == "" {
			errs = append(errs, fmt.Errorf("%s.command is required when transport is stdio", prefix))
		}
		if srv.Transport == MCPTransportStreamableHTTP && srv.URL == "" {
			errs = append(errs, fmt.Errorf("%s.url is required when transport is streamable-http", prefix))
		}
	}

	return errors.Join(errs...)
}

// SlogLevel converts a LogLevel into its slog equivalent.
// Unknown or empty values map to slog.LevelInfo.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
