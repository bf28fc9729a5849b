// Package mcp exposes the search surface over the Model Context Protocol
// so MCP-capable hosts can call it as a tool.
package mcp

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/grokscout/grokscout/internal/config"
	"github.com/grokscout/grokscout/internal/format"
	"github.com/grokscout/grokscout/internal/search"
)

// getArgs extracts arguments from request as map[string]any
func getArgs(request mcp.CallToolRequest) map[string]any {
	if args, ok := request.Params.Arguments.(map[string]any); ok {
		return args
	}
	return make(map[string]any)
}

// Server wraps the MCP server around the search runner.
type Server struct {
	mcpServer *server.MCPServer
	store     *config.Store
	runner    *search.Runner
}

// NewServer creates the MCP server with the search tool registered.
func NewServer(store *config.Store, runner *search.Runner) *Server {
	s := &Server{
		store:  store,
		runner: runner,
	}

	mcpServer := server.NewMCPServer(
		"grokscout",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithPromptCapabilities(true),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)
	s.registerPrompts(mcpServer)

	s.mcpServer = mcpServer
	return s
}

// registerTools adds all MCP tools
func (s *Server) registerTools(mcpServer *server.MCPServer) {
	searchTool := mcp.NewTool("grok_web_search",
		mcp.WithDescription("Search the web in real time via the Grok API and return a concise answer with source links"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query"),
		),
	)
	mcpServer.AddTool(searchTool, s.handleWebSearch)
}

// registerResources adds MCP resources
func (s *Server) registerResources(mcpServer *server.MCPServer) {
	configRes := mcp.NewResource("grokscout://config", "Current search configuration with credentials redacted")
	mcpServer.AddResource(configRes, s.handleReadConfig)
}

// registerPrompts adds MCP prompts
func (s *Server) registerPrompts(mcpServer *server.MCPServer) {
	instrPrompt := mcp.NewPrompt("grokscout/instructions",
		mcp.WithPromptDescription("Get instructions on when and how to use the grok_web_search tool"),
	)
	mcpServer.AddPrompt(instrPrompt, s.handleGetInstructions)
}

// handleWebSearch runs one search. All failures come back as tool errors;
// a Go error would tear down the host's tool call, which the protocol
// contract forbids for expected failures.
func (s *Server) handleWebSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)

	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}
	query = strings.TrimSpace(query)

	settings := s.runner.Settings()
	if settings.EnableSkill {
		// The skill surface owns searching while it is installed; a second
		// tool surface would make the host call both.
		return mcp.NewToolResultError("grok_web_search is disabled while the grok-search skill is installed; use the skill instead"), nil
	}

	log.Printf("[mcp] grok_web_search: %q", query)
	res := s.runner.Run(ctx, query)

	opts := format.Options{
		ShowSources: settings.ShowSources,
		MaxSources:  settings.MaxSources,
	}
	text := format.ForLLM(res, opts)
	if !res.OK {
		return mcp.NewToolResultError(text), nil
	}
	return mcp.NewToolResultText(text), nil
}

// handleReadConfig serves the current settings with credentials redacted.
func (s *Server) handleReadConfig(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	settings := s.runner.Settings()
	settings.APIKey = redactKey(settings.APIKey)
	settings.TelegramToken = redactKey(settings.TelegramToken)
	settings.DiscordToken = redactKey(settings.DiscordToken)
	// Copy before redacting; the map is shared with the store
	if len(settings.ExtraHeaders) > 0 {
		redacted := make(map[string]string, len(settings.ExtraHeaders))
		for k := range settings.ExtraHeaders {
			redacted[k] = "<redacted>"
		}
		settings.ExtraHeaders = redacted
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// redactKey keeps a short prefix so users can tell which key is loaded.
func redactKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "<redacted>"
	}
	return key[:4] + "..." + "<redacted>"
}

// handleGetInstructions returns usage guidance for the host agent.
func (s *Server) handleGetInstructions(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	instructions := `### Web search via grok_web_search
Call the 'grok_web_search' tool when the user asks about current events,
recent releases, prices, or anything that may postdate your training data.

Rules:
1. Pass the user's question as the 'query' parameter, rephrased into a
   self-contained search query.
2. The tool returns a plain-text answer followed by a reference list.
   Cite the references when you use them.
3. A tool error starting with "Search failed" means the upstream API
   rejected the call; report the reason to the user instead of retrying
   in a loop.`

	return &mcp.GetPromptResult{
		Description: "grokscout web search instructions",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: instructions,
				},
			},
		},
	}, nil
}

// Run starts the MCP server in stdio mode
func (s *Server) Run(ctx context.Context) error {
	log.Println("Starting grokscout MCP server in stdio mode...")
	return server.ServeStdio(s.mcpServer)
}
