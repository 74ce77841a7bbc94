package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/report"
)

const reportURI = "bst-license://report"

func registerResources(s *server.MCPServer, outputDir string) {
	s.AddResource(
		mcplib.NewResource(
			reportURI,
			"License Report",
			mcplib.WithResourceDescription("license_check_summary.json of the last finished run"),
			mcplib.WithMIMEType("application/json"),
		),
		handleReportResource(outputDir),
	)
}

func handleReportResource(outputDir string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		if outputDir == "" {
			return nil, fmt.Errorf("no output directory configured")
		}
		data, err := os.ReadFile(filepath.Join(outputDir, report.SummaryJSON))
		if err != nil {
			return nil, fmt.Errorf("reading report: %w", err)
		}
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      reportURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
