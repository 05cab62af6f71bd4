// Package mcpserver exposes the question answering loop and the document
// index as MCP tools, so MCP-capable clients can ask questions over the
// corpus without linking this module.
package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sweetpotato0/docqa/pkg/logging"
	"github.com/sweetpotato0/docqa/rag/agentic"
	"github.com/sweetpotato0/docqa/rag/loader"
	"github.com/sweetpotato0/docqa/rag/retriever"
)

const version = "0.1.0"

// NewServer builds an MCP server wrapping the orchestrator and retriever.
func NewServer(name string, orch *agentic.Orchestrator, ret *retriever.Retriever) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
		Title:   "docqa document question answering",
	}, nil)

	addAskTool(server, orch)
	addIndexTool(server, ret)
	addCountTool(server, ret)

	return server
}

func addAskTool(server *mcp.Server, orch *agentic.Orchestrator) {
	type args struct {
		Question string `json:"question" jsonschema:"Question to answer from the indexed documents"`
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the indexed documents, with source attribution",
	}, func(ctx context.Context, req *mcp.CallToolRequest, a args) (*mcp.CallToolResult, any, error) {
		question := strings.TrimSpace(a.Question)
		if question == "" {
			return nil, nil, fmt.Errorf("question is required")
		}

		result, err := orch.Query(ctx, question)
		if err != nil {
			return nil, nil, fmt.Errorf("answer question: %w", err)
		}

		text := result.Answer
		if len(result.Sources) > 0 {
			text += "\n\nSources: " + strings.Join(result.Sources, ", ")
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: text},
			},
		}, result, nil
	})
}

func addIndexTool(server *mcp.Server, ret *retriever.Retriever) {
	type args struct {
		Directory string `json:"directory" jsonschema:"Directory of .txt, .md and .html files to index"`
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "index_documents",
		Description: "Load a directory of documents into the search index",
	}, func(ctx context.Context, req *mcp.CallToolRequest, a args) (*mcp.CallToolResult, any, error) {
		dir := strings.TrimSpace(a.Directory)
		if dir == "" {
			return nil, nil, fmt.Errorf("directory is required")
		}

		docs, err := loader.LoadDirectory(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("load directory: %w", err)
		}
		if len(docs) == 0 {
			return nil, nil, fmt.Errorf("no loadable documents in %s", dir)
		}

		if err := ret.IndexDocuments(ctx, docs...); err != nil {
			return nil, nil, fmt.Errorf("index documents: %w", err)
		}

		logging.WithComponent("mcpserver").InfoContext(ctx, "indexed documents",
			"directory", dir, "documents", len(docs))

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("indexed %d documents from %s", len(docs), dir)},
			},
		}, nil, nil
	})
}

func addCountTool(server *mcp.Server, ret *retriever.Retriever) {
	type args struct{}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "count_chunks",
		Description: "Report how many document chunks are currently indexed",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ args) (*mcp.CallToolResult, any, error) {
		count, err := ret.Count(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("count chunks: %w", err)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("%d chunks indexed", count)},
			},
		}, nil, nil
	})
}

// Run serves MCP over stdio until the context is cancelled.
func Run(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
