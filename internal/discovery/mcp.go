package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"conductor/pkg/logging"
)

// TransportStdio and TransportStreamableHTTP are the supported provider
// transports.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// protocolVersion is the MCP protocol revision spoken during the handshake.
const protocolVersion = "2024-11-05"

// connectTimeout bounds the protocol handshake when the caller supplied no
// deadline of its own.
const connectTimeout = 10 * time.Second

// ServerSpec describes how to reach one provider process or endpoint.
type ServerSpec struct {
	Transport string            `yaml:"transport"`
	Command   string            `yaml:"command,omitempty"`
	Args      []string          `yaml:"args,omitempty"`
	Env       map[string]string `yaml:"env,omitempty"`
	URL       string            `yaml:"url,omitempty"`
}

// MCPSession implements Session over MCP clients. Each named provider gets
// its own client, created lazily on Connect and reused afterwards.
type MCPSession struct {
	mu      sync.RWMutex
	servers map[string]ServerSpec
	clients map[string]client.MCPClient
}

// NewMCPSession creates a session over the given provider specs.
func NewMCPSession(servers map[string]ServerSpec) *MCPSession {
	specs := make(map[string]ServerSpec, len(servers))
	for name, spec := range servers {
		specs[name] = spec
	}
	return &MCPSession{
		servers: specs,
		clients: make(map[string]client.MCPClient),
	}
}

// AddServer registers a provider spec so it can be connected later. The
// installer calls this after a successful install.
func (s *MCPSession) AddServer(name string, spec ServerSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.servers[name] = spec
}

// ListConnected returns the providers with a live client.
func (s *MCPSession) ListConnected(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.clients))
	for name := range s.clients {
		names = append(names, name)
	}
	return names, nil
}

// Connect establishes the MCP session with the named provider, performing
// the protocol handshake.
func (s *MCPSession) Connect(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, connected := s.clients[name]; connected {
		return nil
	}
	spec, known := s.servers[name]
	if !known {
		return fmt.Errorf("provider %s has no server spec", name)
	}

	mcpClient, err := newClient(spec)
	if err != nil {
		return fmt.Errorf("failed to create client for %s: %w", name, err)
	}

	initCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, connectTimeout)
		defer cancel()
	}

	_, err = mcpClient.Initialize(initCtx, mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: protocolVersion,
			ClientInfo: mcp.Implementation{
				Name:    "conductor",
				Version: "1.0.0",
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	})
	if err != nil {
		if closeErr := mcpClient.Close(); closeErr != nil {
			logging.Debug("Session", "error closing failed client for %s: %v", name, closeErr)
		}
		return fmt.Errorf("failed to initialize MCP protocol for %s: %w", name, err)
	}

	s.clients[name] = mcpClient
	logging.Debug("Session", "connected to provider %s via %s", name, spec.Transport)
	return nil
}

// ListTools returns the tool names advertised by the named provider.
func (s *MCPSession) ListTools(ctx context.Context, name string) ([]string, error) {
	c, err := s.clientFor(name)
	if err != nil {
		return nil, err
	}

	result, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools for %s: %w", name, err)
	}

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	return names, nil
}

// ListResources returns the resource names advertised by the named provider.
// Providers without resource support report an empty list.
func (s *MCPSession) ListResources(ctx context.Context, name string) ([]string, error) {
	c, err := s.clientFor(name)
	if err != nil {
		return nil, err
	}

	result, err := c.ListResources(ctx, mcp.ListResourcesRequest{})
	if err != nil {
		// Many providers do not implement resources at all; treat the
		// method error as an empty list rather than a failed provider.
		logging.Debug("Session", "provider %s has no resources: %v", name, err)
		return nil, nil
	}

	names := make([]string, 0, len(result.Resources))
	for _, res := range result.Resources {
		names = append(names, res.Name)
	}
	return names, nil
}

// Close shuts down every live client.
func (s *MCPSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, c := range s.clients {
		if err := c.Close(); err != nil {
			logging.Debug("Session", "error closing client for %s: %v", name, err)
		}
		delete(s.clients, name)
	}
}

func (s *MCPSession) clientFor(name string) (client.MCPClient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not connected", name)
	}
	return c, nil
}

func newClient(spec ServerSpec) (client.MCPClient, error) {
	switch spec.Transport {
	case TransportStreamableHTTP:
		return client.NewStreamableHttpClient(spec.URL)
	case TransportStdio, "":
		var env []string
		for k, v := range spec.Env {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		return client.NewStdioMCPClient(spec.Command, env, spec.Args...)
	default:
		return nil, fmt.Errorf("unsupported transport %q", spec.Transport)
	}
}
