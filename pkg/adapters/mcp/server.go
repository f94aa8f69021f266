// Package mcp exposes the wizard to Model Context Protocol clients.
//
// The server acts as one fixed operator: clients pick buttons and type
// answers, they never choose whose session they drive.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/remnawizard"
	"github.com/aretw0/remnawizard/internal/logging"
	"github.com/aretw0/remnawizard/pkg/domain"
	"github.com/aretw0/remnawizard/pkg/ports"
)

// GraphURI is the resource holding the Mermaid diagram of the wizard.
const GraphURI = "remnawizard://graph"

// ActionArgs are the arguments of the wizard_action tool.
type ActionArgs struct {
	Token string `json:"token,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Server wraps a wizard handler and exposes it as an MCP Server.
type Server struct {
	handler   ports.Handler
	userID    domain.UserID
	graph     func() string
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithGraph publishes the diagram returned by render as a resource.
func WithGraph(render func() string) Option {
	return func(s *Server) {
		s.graph = render
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server acting as userID.
func NewServer(h ports.Handler, userID domain.UserID, opts ...Option) *Server {
	s := &Server{
		handler:   h,
		userID:    userID,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("remnawizard-mcp", strings.TrimSpace(remnawizard.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	if s.graph != nil {
		s.registerResources()
	}
	return s
}

// ServeStdio serves on the given streams until ctx ends.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}

// ServeSSE serves on addr using SSE until ctx ends.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

var actionDescription = fmt.Sprintf("Press a button or answer the current prompt of the user creation wizard. "+
	"Send token %q to open the menu and %q to start a new user, then use the tokens listed in prompt.actions. "+
	"Send text only when prompt.input is true.", domain.TokenHome, domain.TokenBegin)

func (s *Server) registerTools() {
	// TOOL: wizard_action
	actionTool := mcp.NewTool("wizard_action",
		mcp.WithDescription(actionDescription),
		mcp.WithString("token", mcp.Description("Button token from prompt.actions")),
		mcp.WithString("text", mcp.Description("Free-text answer, used when token is empty")),
		mcp.WithOutputSchema[domain.Reply](),
	)
	s.mcpServer.AddTool(actionTool, mcp.NewStructuredToolHandler(s.handleAction))

	if s.graph != nil {
		// TOOL: get_graph
		s.mcpServer.AddTool(mcp.NewTool("get_graph",
			mcp.WithDescription("Get the wizard step graph as a Mermaid diagram."),
		), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText(s.graph()), nil
		})
	}
}

// errNoAction is returned when neither a token nor text was supplied.
var errNoAction = errors.New("either token or text is required")

func (s *Server) handleAction(ctx context.Context, request mcp.CallToolRequest, args ActionArgs) (domain.Reply, error) {
	if args.Token == "" && args.Text == "" {
		return domain.Reply{}, errNoAction
	}
	reply, err := s.handler.Handle(ctx, domain.Envelope{UserID: s.userID, Token: args.Token, Text: args.Text})
	if err != nil {
		s.logger.Error("MCP action failed", "user_id", s.userID, "err", err)
		return domain.Reply{}, fmt.Errorf("action failed: %w", err)
	}
	return reply, nil
}

func (s *Server) registerResources() {
	// EXPOSE: remnawizard://graph
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Wizard Graph",
		mcp.WithMIMEType("text/plain"),
	), s.readGraph)
}

func (s *Server) readGraph(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphURI,
			MIMEType: "text/plain",
			Text:     s.graph(),
		},
	}, nil
}
