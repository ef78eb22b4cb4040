// Package mcp exposes the query engine's operations as named MCP tools. The
// tool surface is a pure proxy over the HTTP query API.
package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"workflow-templates/backend/pkg/models"
)

// Server wires the workflow-template tools into an MCP server.
type Server struct {
	mcpServer *server.MCPServer
	api       *apiClient
}

// NewServer creates the tool server talking to the query API at apiBaseURL.
func NewServer(apiBaseURL string, timeout time.Duration, logger Logger) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"workflow-templates",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		api: newAPIClient(apiBaseURL, timeout, logger),
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
			"search_templates",
			mcp.WithDescription("Search workflow templates by query, category, or trigger type"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search query (searches name, description, services)")),
			mcp.WithString("category", mcp.Description("Filter by category (e.g. 'AI Agent Development')")),
			mcp.WithString("trigger_type", mcp.Description("Filter by trigger type (e.g. 'webhook', 'schedule')")),
			mcp.WithNumber("limit", mcp.Description("Maximum results to return"), mcp.DefaultNumber(20)),
		),
		s.handleSearchTemplates,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_template_metadata",
			mcp.WithDescription("Get detailed metadata for a specific workflow template"),
			mcp.WithString("template_id", mcp.Required(), mcp.Description("Template ID")),
		),
		s.handleGetTemplateMetadata,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_categories",
			mcp.WithDescription("List all available workflow categories with counts"),
		),
		s.handleListCategories,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_popular_templates",
			mcp.WithDescription("Get most popular workflow templates"),
			mcp.WithNumber("limit", mcp.Description("Number of templates to return"), mcp.DefaultNumber(10)),
		),
		s.handleListPopularTemplates,
	)
}

func (s *Server) handleSearchTemplates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("Missing required parameter: query"), nil
	}

	req := models.SearchRequest{Query: query, Limit: 20}
	if category, ok := args["category"].(string); ok {
		req.Category = category
	}
	if triggerType, ok := args["trigger_type"].(string); ok {
		req.TriggerType = triggerType
	}
	if limit, ok := args["limit"].(float64); ok && limit > 0 {
		req.Limit = int(limit)
	}

	results := s.api.SearchTemplates(ctx, req)
	return textResult(results), nil
}

func (s *Server) handleGetTemplateMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	templateID, ok := args["template_id"].(string)
	if !ok || templateID == "" {
		return mcp.NewToolResultError("Missing required parameter: template_id"), nil
	}

	metadata := s.api.GetTemplateMetadata(ctx, templateID)
	if metadata == nil {
		return mcp.NewToolResultText("Template not found"), nil
	}
	return textResult(metadata), nil
}

func (s *Server) handleListCategories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return textResult(s.api.ListCategories(ctx)), nil
}

func (s *Server) handleListPopularTemplates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := 10
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		if parsed, ok := args["limit"].(float64); ok && parsed > 0 {
			limit = int(parsed)
		}
	}
	return textResult(s.api.ListPopularTemplates(ctx, limit)), nil
}

func textResult(v any) *mcp.CallToolResult {
	jsonBytes, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonBytes))
}

// MountHTTPHandlers exposes the MCP server over SSE on the given mux.
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
