package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wayfarer-ai/wayfarer/internal/config"
	"github.com/wayfarer-ai/wayfarer/pkg/types"
)

// clientInfo identifies this process to MCP servers during the handshake.
var clientInfo = &mcp.Implementation{
	Name:    "wayfarer",
	Version: "1.0.0",
}

// MCPImporter mounts tools exposed by external MCP servers into a Registry.
// Imported tool names are prefixed with the server name ("maps_geocode" from
// server "amap" registers as "amap_maps_geocode") so they cannot collide
// with builtin tools or with each other.
type MCPImporter struct {
	logger   *slog.Logger
	sessions []*mcp.ClientSession
}

// NewMCPImporter returns an importer. A nil logger falls back to
// slog.Default.
func NewMCPImporter(logger *slog.Logger) *MCPImporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &MCPImporter{logger: logger}
}

// Import connects to every configured server and registers its tools in reg.
// A server that fails to connect or list is skipped with a warning; one bad
// server must not take down the builtin tool set.
func (im *MCPImporter) Import(ctx context.Context, reg *Registry, servers []config.MCPServerConfig) error {
	for _, srv := range servers {
		if err := im.importServer(ctx, reg, srv); err != nil {
			im.logger.WarnContext(ctx, "skipping MCP server", "server", srv.Name, "error", err)
		}
	}
	return nil
}

// Close shuts down every live server session.
func (im *MCPImporter) Close() error {
	var firstErr error
	for _, s := range im.sessions {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	im.sessions = nil
	return firstErr
}

func (im *MCPImporter) importServer(ctx context.Context, reg *Registry, srv config.MCPServerConfig) error {
	transport, err := buildTransport(srv)
	if err != nil {
		return err
	}

	client := mcp.NewClient(clientInfo, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return fmt.Errorf("tool: mcp connect %q: %w", srv.Name, err)
	}
	im.sessions = append(im.sessions, session)

	listed, err := session.ListTools(ctx, nil)
	if err != nil {
		return fmt.Errorf("tool: mcp list tools %q: %w", srv.Name, err)
	}

	for _, t := range listed.Tools {
		def := types.ToolDefinition{
			Name:        srv.Name + "_" + t.Name,
			Description: t.Description,
			Parameters:  schemaToMap(t.InputSchema),
		}
		remote := t.Name
		fn := func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return callRemote(ctx, session, remote, args)
		}
		if err := reg.Register(def, fn); err != nil {
			im.logger.WarnContext(ctx, "skipping MCP tool", "server", srv.Name, "tool", t.Name, "error", err)
			continue
		}
		im.logger.InfoContext(ctx, "imported MCP tool", "server", srv.Name, "tool", def.Name)
	}
	return nil
}

func buildTransport(srv config.MCPServerConfig) (mcp.Transport, error) {
	switch srv.Transport {
	case config.MCPTransportStdio:
		fields := strings.Fields(srv.Command)
		if len(fields) == 0 {
			return nil, fmt.Errorf("tool: mcp server %q: empty command", srv.Name)
		}
		cmd := exec.Command(fields[0], fields[1:]...)
		cmd.Env = os.Environ()
		for k, v := range srv.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
		return &mcp.CommandTransport{Command: cmd}, nil
	case config.MCPTransportStreamableHTTP:
		return &mcp.StreamableClientTransport{Endpoint: srv.URL}, nil
	default:
		return nil, fmt.Errorf("tool: mcp server %q: unsupported transport %q", srv.Name, srv.Transport)
	}
}

// callRemote forwards a tool call to the server and flattens the response
// content. Text content that parses as a JSON object passes through
// structured; anything else is wrapped under a "content" key.
func callRemote(ctx context.Context, session *mcp.ClientSession, name string, args map[string]any) (map[string]any, error) {
	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("tool: mcp call %q: %w", name, err)
	}

	var parts []string
	for _, content := range res.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	text := strings.Join(parts, "\n")

	if res.IsError {
		return map[string]any{"error": text}, nil
	}

	var structured map[string]any
	if err := json.Unmarshal([]byte(text), &structured); err == nil {
		return structured, nil
	}
	return map[string]any{"content": text}, nil
}

func schemaToMap(schema any) map[string]any {
	if schema == nil {
		return map[string]any{"type": "object"}
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil || len(out) == 0 {
		return map[string]any{"type": "object"}
	}
	return out
}
