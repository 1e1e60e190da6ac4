// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Raido learning-path tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/pathservice"
	"github.com/starford/raido/internal/similarity"
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *pathservice.Service
	search Searcher
}

// Searcher is the semantic-search surface of the find_similar_notes tool.
type Searcher interface {
	IsAvailable() bool
	FindSimilarToContent(ctx context.Context, text string, opts similarity.SearchOptions) ([]similarity.Match, error)
}

// New creates a new MCP server with all Raido tools registered.
func New(svc *pathservice.Service, search Searcher) *Server {
	s := &Server{svc: svc, search: search}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("generate_learning_path",
		mcp.WithDescription("Generate an ordered learning path toward a goal note. "+
			"Returns the path, parallel-learnable levels, knowledge gaps, and any "+
			"degradation warnings."),
		mcp.WithString("goal_path", mcp.Required(), mcp.Description("Vault-relative path of the goal note (e.g. topics/goal.md)")),
	), s.generatePath)

	s.mcp.AddTool(mcp.NewTool("get_learning_path",
		mcp.WithDescription("Read a stored learning path by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Learning path id")),
	), s.getPath)

	s.mcp.AddTool(mcp.NewTool("list_learning_paths",
		mcp.WithDescription("List all stored learning paths with their goals and progress."),
	), s.listPaths)

	s.mcp.AddTool(mcp.NewTool("update_progress",
		mcp.WithDescription("Update the mastery level of one node in a learning path. "+
			"Valid levels: not_started, in_progress, completed."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Learning path id")),
		mcp.WithString("note_path", mcp.Required(), mcp.Description("Path of the note whose progress changes")),
		mcp.WithString("mastery", mcp.Required(), mcp.Description("New mastery level")),
	), s.updateProgress)

	s.mcp.AddTool(mcp.NewTool("find_similar_notes",
		mcp.WithDescription("Find vault notes semantically similar to the given text."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Query text")),
	), s.findSimilar)

	// Resource: path document format.
	s.mcp.AddResource(
		mcp.NewResource("raido://path-format", "Learning Path Format",
			mcp.WithResourceDescription("Shape of the learning path documents returned by the path tools."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPathFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) generatePath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goal, err := req.RequireString("goal_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Generate(ctx, goal)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.Get(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(p, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listPaths(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths, err := s.svc.List()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no learning paths stored"), nil
	}

	var b strings.Builder
	for _, p := range paths {
		stats := p.Statistics()
		fmt.Fprintf(&b, "%s  goal=%s  nodes=%d  completed=%d\n",
			p.ID, p.GoalPath, stats.TotalNodes, stats.CompletedNodes)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) updateProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notePath, err := req.RequireString("note_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mastery, err := req.RequireString("mastery")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p, err := s.svc.UpdateProgress(id, notePath, models.MasteryLevel(mastery))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(p, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) findSimilar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.search == nil || !s.search.IsAvailable() {
		return mcp.NewToolResultError("semantic search unavailable: no embedding provider configured"), nil
	}
	matches, err := s.search.FindSimilarToContent(ctx, text, similarity.SearchOptions{})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(matches) == 0 {
		return mcp.NewToolResultText("no similar notes found"), nil
	}

	var b strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&b, "%s  (similarity %.2f)\n", m.Path, m.Similarity)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) readPathFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://path-format",
			MIMEType: "text/markdown",
			Text:     PathFormatContract,
		},
	}, nil
}
