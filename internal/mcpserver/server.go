// Package mcpserver exposes journal search and indexing as MCP tools over
// stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"journal-rag/internal/apperr"
	"journal-rag/internal/contextutil"
	"journal-rag/internal/indexer"
	"journal-rag/internal/rag"
	"journal-rag/internal/service"
)

// DefaultResults is the number of results query_journal returns by default.
const DefaultResults = 3

// Server wraps the MCP server with the journal tools.
type Server struct {
	mcp    *server.MCPServer
	search service.SearchService
	index  service.IndexService
}

// New creates a new MCP server with all journal tools registered.
func New(search service.SearchService, index service.IndexService, version string) *Server {
	s := &Server{search: search, index: index}

	s.mcp = server.NewMCPServer(
		"journal-rag",
		version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("query_journal",
		mcp.WithDescription("Queries the personal journal entries using semantic search."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The search query text.")),
		mcp.WithNumber("n_results",
			mcp.Description(fmt.Sprintf("Number of results to return (default: %d).", DefaultResults)),
			mcp.Min(1),
		),
		mcp.WithString("after", mcp.Description("Only entries on or after this date (YYYY-MM-DD).")),
		mcp.WithString("before", mcp.Description("Only entries on or before this date (YYYY-MM-DD).")),
	), s.queryJournal)

	s.mcp.AddTool(mcp.NewTool("update_index",
		mcp.WithDescription("Rebuilds the journal index from the journal directory. The index is replaced as a whole, never patched; an existing index is only replaced when full_reindex=true."),
		mcp.WithBoolean("full_reindex",
			mcp.Description("Rebuild the index from scratch, replacing the existing one."),
			mcp.DefaultBool(false),
		),
		mcp.WithString("since", mcp.Description("Only index entries on or after this date (YYYY-MM-DD).")),
	), s.updateIndex)

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

func (s *Server) queryJournal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	query, err := req.RequireString("query")
	if err != nil || query == "" {
		return mcp.NewToolResultError("Invalid params: 'query' argument is missing or not a string."), nil
	}
	n := req.GetInt("n_results", DefaultResults)
	if n < 1 {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid params: 'n_results' must be a positive integer (default: %d).", DefaultResults)), nil
	}

	outcome, err := s.search.Search(ctx, service.SearchRequest{
		Query:  query,
		After:  req.GetString("after", ""),
		Before: req.GetString("before", ""),
		Limit:  n,
	})
	if err != nil {
		return mcp.NewToolResultError("Query execution failed: " + err.Error()), nil
	}

	results := outcome.Results
	if results == nil {
		results = []rag.Result{}
	}
	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode results: %w", err)
	}

	res := mcp.NewToolResultText(string(out))
	if outcome.Degraded() {
		logger.WarnContext(ctx, "query_journal served stub results", "reason", outcome.Reason)
		res.Content = append(res.Content, mcp.NewTextContent(
			"Journal index unavailable, these are placeholder results: "+outcome.Reason.Error()))
	}
	return res, nil
}

func (s *Server) updateIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rebuild := req.GetBool("full_reindex", false)

	stats, err := s.index.Index(ctx, service.IndexRequest{
		Rebuild: rebuild,
		Since:   req.GetString("since", ""),
	})
	if err != nil {
		if errors.Is(err, apperr.ErrIndexExists) {
			return mcp.NewToolResultError("Index update failed: index already exists; call again with full_reindex=true to rebuild it."), nil
		}
		return mcp.NewToolResultError("Index update failed: " + err.Error()), nil
	}

	return mcp.NewToolResultText(summary(stats)), nil
}

// summary renders run statistics for the tool response.
func summary(stats *indexer.Stats) string {
	line := fmt.Sprintf("Indexed %d documents into %d records in %s.",
		stats.Documents, stats.Records, stats.Elapsed.Round(time.Millisecond))
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return line
	}
	return line + "\n" + string(data)
}
