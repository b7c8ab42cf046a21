// Command wayfarer is the main entry point for the Wayfarer travel
// assistant server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/wayfarer-ai/wayfarer/internal/agent"
	"github.com/wayfarer-ai/wayfarer/internal/config"
	"github.com/wayfarer-ai/wayfarer/internal/intent"
	"github.com/wayfarer-ai/wayfarer/internal/observe"
	"github.com/wayfarer-ai/wayfarer/internal/profile"
	"github.com/wayfarer-ai/wayfarer/internal/resilience"
	"github.com/wayfarer-ai/wayfarer/internal/server"
	"github.com/wayfarer-ai/wayfarer/internal/tool"
	"github.com/wayfarer-ai/wayfarer/internal/travel"
	"github.com/wayfarer-ai/wayfarer/pkg/amap"
	"github.com/wayfarer-ai/wayfarer/pkg/provider/llm"
	"github.com/wayfarer-ai/wayfarer/pkg/provider/llm/anyllm"
	"github.com/wayfarer-ai/wayfarer/pkg/provider/llm/openai"
	"github.com/wayfarer-ai/wayfarer/pkg/vision"
)

const version = "1.0.0"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "wayfarer: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "wayfarer: %v\n", err)
		}
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("wayfarer starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
		"routing_mode", cfg.Routing.Mode,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "wayfarer",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── LLM provider ──────────────────────────────────────────────────────────
	provider, err := buildLLM(cfg.LLM)
	if err != nil {
		slog.Error("failed to build LLM provider", "err", err)
		return 1
	}

	// ── Profile store ─────────────────────────────────────────────────────────
	store, err := buildProfileStore(ctx, cfg.Profiles)
	if err != nil {
		slog.Error("failed to open profile store", "err", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("profile store close error", "err", err)
		}
	}()
	profiles := profile.NewManager(store, logger)

	// ── Travel tools ──────────────────────────────────────────────────────────
	// Without an Amap key the geographic tools degrade per call rather than
	// blocking startup.
	var maps *amap.Client
	if cfg.Amap.APIKey != "" {
		maps, err = buildAmap(cfg.Amap)
		if err != nil {
			slog.Error("failed to build Amap client", "err", err)
			return 1
		}
	}
	var travelOpts []travel.Option
	if cfg.Vision.APIKey != "" {
		var visionOpts []vision.Option
		if cfg.Vision.BaseURL != "" {
			visionOpts = append(visionOpts, vision.WithBaseURL(cfg.Vision.BaseURL))
		}
		v, err := vision.New(cfg.Vision.APIKey, cfg.Vision.SecretKey, visionOpts...)
		if err != nil {
			slog.Error("failed to build vision client", "err", err)
			return 1
		}
		travelOpts = append(travelOpts, travel.WithVision(v))
	}
	svc := travel.New(maps, profiles, logger, travelOpts...)

	registry := tool.NewRegistry()
	if err := svc.RegisterTools(registry); err != nil {
		slog.Error("failed to register travel tools", "err", err)
		return 1
	}

	// ── MCP tool servers (optional) ───────────────────────────────────────────
	importer := tool.NewMCPImporter(logger)
	if len(cfg.MCP.Servers) > 0 {
		if err := importer.Import(ctx, registry, cfg.MCP.Servers); err != nil {
			slog.Error("failed to import MCP tools", "err", err)
			return 1
		}
	}
	defer func() {
		if err := importer.Close(); err != nil {
			slog.Warn("MCP importer close error", "err", err)
		}
	}()
	registry.Freeze()
	slog.Info("tool registry ready", "tools", registry.Len())

	caller := tool.NewCaller(registry, logger, metrics)
	intents := intent.NewRegistry(intent.WithDefaultTripDays(cfg.Persona.DefaultTripDays))

	newAgent := func(userID string) *agent.Agent {
		return agent.New(agent.Options{
			Provider:         provider,
			Caller:           caller,
			Registry:         registry,
			Intents:          intents,
			Profiles:         profiles,
			UserID:           userID,
			SystemPrompt:     cfg.Persona.SystemPrompt,
			Mode:             cfg.Routing.Mode,
			MaxParallelTools: cfg.Routing.MaxParallelTools,
			ToolTimeout:      time.Duration(cfg.Routing.ToolTimeout),
			Temperature:      cfg.LLM.Temperature,
			Logger:           logger,
			Metrics:          metrics,
		})
	}

	srv := server.New(cfg.Server, newAgent, logger, metrics)
	slog.Info("server ready — press Ctrl+C to shut down")
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// buildLLM constructs the configured LLM backend. When fallback entries are
// present the result is wrapped in a failover group so a failing primary is
// bypassed in favour of the next healthy backend.
func buildLLM(entry config.ProviderEntry) (llm.Provider, error) {
	primary, err := buildLLMBackend(entry)
	if err != nil {
		return nil, err
	}
	if len(entry.Fallbacks) == 0 {
		return primary, nil
	}
	group := resilience.NewLLMFallback(primary, entry.Name, resilience.FallbackConfig{})
	for _, fb := range entry.Fallbacks {
		backend, err := buildLLMBackend(fb)
		if err != nil {
			return nil, fmt.Errorf("fallback %q: %w", fb.Name, err)
		}
		group.AddFallback(fb.Name, backend)
	}
	return group, nil
}

func buildLLMBackend(entry config.ProviderEntry) (llm.Provider, error) {
	switch entry.Name {
	case "", "openai":
		var opts []openai.Option
		if entry.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(entry.BaseURL))
		}
		return openai.New(entry.APIKey, entry.Model, opts...)
	default:
		var opts []anyllmlib.Option
		if entry.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
		}
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New(entry.Name, entry.Model, opts...)
	}
}

func buildProfileStore(ctx context.Context, cfg config.ProfilesConfig) (profile.Store, error) {
	switch cfg.Backend {
	case "", config.ProfileMemory:
		return profile.NewMemoryStore(), nil
	case config.ProfileFile:
		return profile.NewFileStore(cfg.Path)
	case config.ProfilePostgres:
		return profile.OpenPostgresStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown profile backend %q", cfg.Backend)
	}
}

func buildAmap(cfg config.AmapConfig) (*amap.Client, error) {
	var opts []amap.Option
	if cfg.BaseURL != "" {
		opts = append(opts, amap.WithBaseURL(cfg.BaseURL))
	}
	return amap.New(cfg.APIKey, opts...)
}
