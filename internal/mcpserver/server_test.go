package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/mock/gomock"

	"journal-rag/internal/apperr"
	"journal-rag/internal/indexer"
	"journal-rag/internal/rag"
	"journal-rag/internal/service"
	"journal-rag/internal/service/mocks"
)

func testServer(t *testing.T) (*Server, *mocks.MockSearchService, *mocks.MockIndexService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	search := mocks.NewMockSearchService(ctrl)
	index := mocks.NewMockIndexService(ctrl)
	return New(search, index, "test"), search, index
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error
	switch name {
	case "query_journal":
		result, err = srv.queryJournal(ctx, req)
	case "update_index":
		result, err = srv.updateIndex(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult, i int) string {
	if len(r.Content) > i {
		if tc, ok := r.Content[i].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestQueryJournal(t *testing.T) {
	srv, search, _ := testServer(t)

	search.EXPECT().
		Search(gomock.Any(), service.SearchRequest{Query: "rust", After: "2025-07-01", Limit: 5}).
		Return(rag.Outcome{Mode: rag.ModeLive, Results: []rag.Result{
			{Path: "journal/2025/07/21.md", Date: time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC), Score: 0.8, Snippet: "rust"},
		}}, nil)

	r := callTool(t, srv, "query_journal", map[string]any{
		"query":     "rust",
		"n_results": float64(5),
		"after":     "2025-07-01",
	})
	if r.IsError {
		t.Fatalf("query_journal error: %s", resultText(r, 0))
	}

	var results []map[string]any
	if err := json.Unmarshal([]byte(resultText(r, 0)), &results); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(results) != 1 || results[0]["date"] != "2025-07-21" {
		t.Errorf("results = %v", results)
	}
	if len(r.Content) != 1 {
		t.Errorf("content items = %d, want 1 for live results", len(r.Content))
	}
}

func TestQueryJournal_DefaultResults(t *testing.T) {
	srv, search, _ := testServer(t)

	search.EXPECT().
		Search(gomock.Any(), service.SearchRequest{Query: "rust", Limit: DefaultResults}).
		Return(rag.Outcome{Mode: rag.ModeLive}, nil)

	r := callTool(t, srv, "query_journal", map[string]any{"query": "rust"})
	if r.IsError {
		t.Fatalf("query_journal error: %s", resultText(r, 0))
	}
	if got := resultText(r, 0); got != "[]" {
		t.Errorf("result = %q, want []", got)
	}
}

func TestQueryJournal_Degraded(t *testing.T) {
	srv, search, _ := testServer(t)

	search.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return(rag.Outcome{
			Mode:    rag.ModeDegraded,
			Results: []rag.Result{{Path: "journal/2025/07/21.md"}},
			Reason:  fmt.Errorf("table documents: %w", apperr.ErrNotFound),
		}, nil)

	r := callTool(t, srv, "query_journal", map[string]any{"query": "rust"})
	if r.IsError {
		t.Fatalf("query_journal error: %s", resultText(r, 0))
	}
	if !strings.Contains(resultText(r, 1), "placeholder") {
		t.Errorf("second content = %q, want degraded notice", resultText(r, 1))
	}
}

func TestQueryJournal_InvalidParams(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{name: "missing query", args: map[string]any{}},
		{name: "empty query", args: map[string]any{"query": ""}},
		{name: "zero results", args: map[string]any{"query": "rust", "n_results": float64(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, _ := testServer(t)
			r := callTool(t, srv, "query_journal", tt.args)
			if !r.IsError {
				t.Errorf("query_journal(%v) should fail", tt.args)
			}
		})
	}
}

func TestQueryJournal_ServiceError(t *testing.T) {
	srv, search, _ := testServer(t)
	search.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return(rag.Outcome{}, &apperr.ValidationError{Field: "after", Message: "must be a valid date"})

	r := callTool(t, srv, "query_journal", map[string]any{"query": "rust", "after": "July"})
	if !r.IsError {
		t.Fatal("query_journal should fail on validation error")
	}
	if !strings.Contains(resultText(r, 0), "after") {
		t.Errorf("error = %q, want field name", resultText(r, 0))
	}
}

func TestUpdateIndex(t *testing.T) {
	tests := []struct {
		name      string
		args      map[string]any
		wantReq   service.IndexRequest
		stats     *indexer.Stats
		err       error
		wantError bool
		wantText  string
	}{
		{
			name:     "full reindex",
			args:     map[string]any{"full_reindex": true},
			wantReq:  service.IndexRequest{Rebuild: true},
			stats:    &indexer.Stats{Documents: 2, Records: 8, Elapsed: 1500 * time.Millisecond},
			wantText: "Indexed 2 documents into 8 records in 1.5s.",
		},
		{
			name:     "since",
			args:     map[string]any{"since": "2025-07-01"},
			wantReq:  service.IndexRequest{Since: "2025-07-01"},
			stats:    &indexer.Stats{},
			wantText: `"records": 0`,
		},
		{
			name:      "index exists",
			args:      map[string]any{},
			wantReq:   service.IndexRequest{},
			err:       fmt.Errorf("table documents: %w", apperr.ErrIndexExists),
			wantError: true,
			wantText:  "full_reindex=true",
		},
		{
			name:      "embedder down",
			args:      map[string]any{"full_reindex": true},
			wantReq:   service.IndexRequest{Rebuild: true},
			err:       apperr.Capability(errors.New("connection refused"), "failed to embed batch"),
			wantError: true,
			wantText:  "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, index := testServer(t)
			index.EXPECT().Index(gomock.Any(), tt.wantReq).Return(tt.stats, tt.err)

			r := callTool(t, srv, "update_index", tt.args)
			if r.IsError != tt.wantError {
				t.Fatalf("IsError = %v, want %v: %s", r.IsError, tt.wantError, resultText(r, 0))
			}
			if !strings.Contains(resultText(r, 0), tt.wantText) {
				t.Errorf("result = %q, want it to contain %q", resultText(r, 0), tt.wantText)
			}
		})
	}
}

func TestNew(t *testing.T) {
	srv, _, _ := testServer(t)
	if srv.MCPServer() == nil {
		t.Fatal("MCPServer() returned nil")
	}
}

func TestUpdateIndex_DescriptionNamesReplace(t *testing.T) {
	srv, _, _ := testServer(t)

	resp := srv.MCPServer().HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal tools/list response: %v", err)
	}

	var decoded struct {
		Result struct {
			Tools []struct {
				Name        string `json:"name"`
				Description string `json:"description"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode tools/list response: %v", err)
	}

	var description string
	for _, tool := range decoded.Result.Tools {
		if tool.Name == "update_index" {
			description = tool.Description
		}
	}
	if description == "" {
		t.Fatalf("tools/list = %s, want an update_index tool", raw)
	}
	if !strings.Contains(description, "full_reindex=true") {
		t.Errorf("description = %q, want it to name full_reindex=true", description)
	}
	if strings.Contains(description, "new or modified") {
		t.Errorf("description = %q, should not promise incremental updates", description)
	}
}
