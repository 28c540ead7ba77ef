package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/nodecalc"
	"github.com/aretw0/nodecalc/internal/dto"
	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/aretw0/nodecalc/pkg/ports"
)

// GraphURI names the resource holding the current snapshot.
const GraphURI = "nodecalc://graph"

// ToolResponse is the structured result of every editing tool.
type ToolResponse struct {
	Node       domain.NodeID       `json:"node,omitempty" jsonschema_description:"Id of the node created by add_node"`
	Connection domain.ConnectionID `json:"connection,omitempty" jsonschema_description:"Id of the connection created by connect"`
	Display    string              `json:"display" jsonschema_description:"Text shown by the output sink"`
	Verdict    domain.Verdict      `json:"verdict" jsonschema_description:"Validation result of the graph"`
	Revision   uint64              `json:"revision" jsonschema_description:"Number of completed propagation passes"`
}

// Server wraps an engine and exposes it as an MCP Server.
type Server struct {
	engine    ports.Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. The engine must be safe for
// concurrent use.
func NewServer(engine ports.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("nodecalc-mcp", strings.TrimSpace(nodecalc.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("add_node",
		mcp.WithDescription("Add an operator node. Constants emit their literal; sum adds inputs a and b; division divides dividend by divisor."),
		mcp.WithString("kind", mcp.Required(), mcp.Enum("constant", "sum", "division"), mcp.Description("Node kind")),
		mcp.WithString("name", mcp.Description("Display label (optional)")),
		mcp.WithNumber("literal", mcp.Description("Initial value of a constant (default 0)")),
		mcp.WithArray("defaults", mcp.Description("Initial literal of each input, in port order"), mcp.Items(map[string]any{"type": "integer"})),
		mcp.WithBoolean("no_default", mcp.Description("Leave unconnected inputs absent instead of 0")),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleAddNode))

	s.mcpServer.AddTool(mcp.NewTool("remove_node",
		mcp.WithDescription("Remove a node and every connection touching it. The output sink cannot be removed."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node id, e.g. sum-2")),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleRemoveNode))

	s.mcpServer.AddTool(mcp.NewTool("connect",
		mcp.WithDescription("Connect an output port to a free input port. Ports are written node:out:index and node:in:index."),
		mcp.WithString("from", mcp.Required(), mcp.Description("Output port, e.g. constant-1:out:0")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Input port, e.g. output:in:0")),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleConnect))

	s.mcpServer.AddTool(mcp.NewTool("disconnect",
		mcp.WithDescription("Remove a connection."),
		mcp.WithString("connection_id", mcp.Required(), mcp.Description("Connection id, e.g. conn-1")),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleDisconnect))

	s.mcpServer.AddTool(mcp.NewTool("set_literal",
		mcp.WithDescription("Set the literal of a constant or of the sink (target is a node id) or of an input port (target is node:in:index)."),
		mcp.WithString("target", mcp.Required(), mcp.Description("Node id or input port")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Decimal integer, or null to clear")),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleSetLiteral))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the full graph: nodes, port values, connections, verdict and display."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := s.graphJSON(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}

func (s *Server) handleAddNode(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (ToolResponse, error) {
	var req dto.AddNodeRequest
	if err := dto.Decode(args, &req); err != nil {
		kind, _ := args["kind"].(string)
		return ToolResponse{}, s.rejected("add_node", domain.Structural("add_node", kind, domain.ErrInvalidConfig, err.Error()))
	}
	var id domain.NodeID
	resp, err := s.apply(ctx, "add_node", func(e ports.Engine) (err error) {
		id, err = e.AddNode(ctx, domain.NodeKind(req.Kind), req.Config())
		return err
	})
	resp.Node = id
	return resp, err
}

func (s *Server) handleRemoveNode(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (ToolResponse, error) {
	id, _ := args["node_id"].(string)
	return s.apply(ctx, "remove_node", func(e ports.Engine) error {
		return e.RemoveNode(ctx, domain.NodeID(id))
	})
}

func (s *Server) handleConnect(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (ToolResponse, error) {
	var req dto.ConnectRequest
	if err := dto.Decode(args, &req); err != nil {
		return ToolResponse{}, err
	}
	from, to, err := req.Ports()
	if err != nil {
		return ToolResponse{}, err
	}
	var id domain.ConnectionID
	resp, err := s.apply(ctx, "connect", func(e ports.Engine) (err error) {
		id, err = e.Connect(ctx, from, to)
		return err
	})
	resp.Connection = id
	return resp, err
}

func (s *Server) handleDisconnect(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (ToolResponse, error) {
	id, _ := args["connection_id"].(string)
	return s.apply(ctx, "disconnect", func(e ports.Engine) error {
		return e.Disconnect(ctx, domain.ConnectionID(id))
	})
}

func (s *Server) handleSetLiteral(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (ToolResponse, error) {
	var req dto.ToolLiteralRequest
	if err := dto.Decode(args, &req); err != nil {
		return ToolResponse{}, err
	}
	v, err := domain.ParseValue(req.Value)
	if err != nil {
		return ToolResponse{}, fmt.Errorf("invalid value %q: %w", req.Value, err)
	}

	if strings.Contains(req.Target, ":") {
		port, perr := domain.ParsePortID(req.Target)
		if perr != nil {
			return ToolResponse{}, perr
		}
		return s.apply(ctx, "set_literal", func(e ports.Engine) error {
			return e.SetInputLiteral(ctx, port, v)
		})
	}
	return s.apply(ctx, "set_literal", func(e ports.Engine) error {
		return e.SetLiteral(ctx, domain.NodeID(req.Target), v)
	})
}

// apply runs cmd and reports the snapshot it produced.
func (s *Server) apply(ctx context.Context, tool string, cmd func(ports.Engine) error) (ToolResponse, error) {
	snap, err := s.engine.Apply(ctx, cmd)
	if err != nil {
		return ToolResponse{}, s.rejected(tool, err)
	}
	return ToolResponse{
		Display:  snap.Display.Text,
		Verdict:  snap.Verdict,
		Revision: snap.Revision,
	}, nil
}

func (s *Server) rejected(tool string, err error) error {
	if domain.IsStructural(err) {
		s.logger.Debug("MCP tool rejected", "tool", tool, "err", err)
	} else if !errors.Is(err, context.Canceled) {
		s.logger.Error("MCP tool failed", "tool", tool, "err", err)
	}
	return fmt.Errorf("%s: %w", tool, err)
}

func (s *Server) graphJSON(ctx context.Context) ([]byte, error) {
	snap, err := s.engine.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(snap)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Current Graph",
		mcp.WithResourceDescription("Snapshot of the calculation graph with resolved values"),
		mcp.WithMIMEType("application/json"),
	), s.readGraph)
}

func (s *Server) readGraph(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := s.graphJSON(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect graph: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
