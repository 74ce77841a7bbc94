package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/report"
	"github.com/bst-license-checker/bst-license-checker/internal/domain"
)

// maxOutputBytes caps the raw licensecheck output returned inline.
const maxOutputBytes = 64 * 1024

func registerTools(s *server.MCPServer, store CacheReader, outputDir string) {
	s.AddTool(
		mcplib.NewTool("license_cache_lookup",
			mcplib.WithDescription("Returns the cached license scan of one element at one full key"),
			mcplib.WithString("element",
				mcplib.Required(),
				mcplib.Description("Element name, e.g. components/zlib.bst"),
			),
			mcplib.WithString("key",
				mcplib.Required(),
				mcplib.Description("Full key of the element as printed by bst show"),
			),
			mcplib.WithBoolean("include_output", mcplib.Description("Also return the raw licensecheck output")),
		),
		handleCacheLookup(store),
	)

	s.AddTool(
		mcplib.NewTool("license_cache_list",
			mcplib.WithDescription("Lists every cached full key of an element with its detected licenses"),
			mcplib.WithString("element",
				mcplib.Required(),
				mcplib.Description("Element name, e.g. components/zlib.bst"),
			),
		),
		handleCacheList(store),
	)

	s.AddTool(
		mcplib.NewTool("license_report",
			mcplib.WithDescription("Returns the license summary of the last finished run"),
		),
		handleReport(outputDir),
	)
}

type lookupResult struct {
	Entry      *domain.CacheEntry `json:"entry"`
	OutputPath string             `json:"output-path,omitempty"`
	Output     string             `json:"output,omitempty"`
	Truncated  bool               `json:"truncated,omitempty"`
}

func handleCacheLookup(store CacheReader) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		element, err := request.RequireString("element")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		key, err := request.RequireString("key")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		entry, err := store.Lookup(domain.ElementRef(element), domain.ContentKey(key))
		if err != nil {
			return errorResult(fmt.Sprintf("cache lookup failed: %v", err)), nil
		}
		if entry == nil {
			return errorResult(fmt.Sprintf("no cache entry for %s at %s", element, key)), nil
		}

		res := lookupResult{Entry: entry, OutputPath: store.PayloadPath(entry)}
		if request.GetBool("include_output", false) && res.OutputPath != "" {
			data, err := os.ReadFile(res.OutputPath)
			if err != nil {
				return errorResult(fmt.Sprintf("reading output: %v", err)), nil
			}
			if len(data) > maxOutputBytes {
				data, res.Truncated = data[:maxOutputBytes], true
			}
			res.Output = string(data)
		}
		return jsonResult(res)
	}
}

func handleCacheList(store CacheReader) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		element, err := request.RequireString("element")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		entries, err := store.List(domain.ElementRef(element))
		if err != nil {
			return errorResult(fmt.Sprintf("listing cache failed: %v", err)), nil
		}
		if entries == nil {
			entries = []domain.CacheEntry{}
		}
		return jsonResult(entries)
	}
}

func handleReport(outputDir string) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		if outputDir == "" {
			return errorResult("no output directory configured; start the server with --output"), nil
		}
		summary, err := report.ReadJSON(outputDir)
		if err != nil {
			return errorResult(fmt.Sprintf("reading report: %v", err)), nil
		}
		return jsonResult(summary)
	}
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
