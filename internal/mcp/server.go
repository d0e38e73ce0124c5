package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"caila-fit-action/internal/api"
	"caila-fit-action/internal/services"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server exposes the fit/predict operations as MCP tools, so agent hosts can
// drive the demo service without the REST client.
type Server struct {
	mcpServer *server.MCPServer
	svc       *services.FitService
}

// NewServer creates a new Server.
func NewServer(svc *services.FitService, serviceName, version string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			serviceName,
			version,
			server.WithToolCapabilities(true),
		),
		svc: svc,
	}

	s.registerTools()
	return s
}

// GetMCPServer returns the underlying MCP server.
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"fit",
			mcp.WithDescription("Fit the model on a dataset of texts, replacing any previous state"),
			mcp.WithArray("texts", mcp.Required(), mcp.Description("The texts to store as model state")),
		),
		s.handleFit,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"predict",
			mcp.WithDescription("Return the stored texts at the given indices"),
			mcp.WithArray("texts", mcp.Required(), mcp.Description("Integer indices into the fitted dataset")),
		),
		s.handlePredict,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"prune",
			mcp.WithDescription("Remove the persisted model state and reset the model to unfitted"),
		),
		s.handlePrune,
	)
}

func (s *Server) handleFit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	raw, ok := args["texts"].([]interface{})
	if !ok || len(raw) == 0 {
		return mcp.NewToolResultError("Missing required parameter: texts"), nil
	}

	texts := make([]string, 0, len(raw))
	for _, v := range raw {
		text, ok := v.(string)
		if !ok {
			return mcp.NewToolResultError("Parameter texts must be an array of strings"), nil
		}
		texts = append(texts, text)
	}

	if _, err := s.svc.Fit(ctx, texts); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fit: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(s.svc.Info())
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handlePredict(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	raw, ok := args["texts"].([]interface{})
	if !ok || len(raw) == 0 {
		return mcp.NewToolResultError("Missing required parameter: texts"), nil
	}

	indices := make([]int, 0, len(raw))
	for _, v := range raw {
		// JSON numbers arrive as float64.
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			return mcp.NewToolResultError("Parameter texts must be an array of integer indices"), nil
		}
		indices = append(indices, int(f))
	}

	texts, err := s.svc.Predict(ctx, indices)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to predict: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(api.PredictResponse{Texts: texts})
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handlePrune(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.svc.Prune(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to prune: %v", err)), nil
	}
	return mcp.NewToolResultText("Model state pruned"), nil
}

// MountHTTPHandlers mounts the MCP endpoints on the given mux.
func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
