package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
)

// CacheReader is the read side of the scan cache.
type CacheReader interface {
	Lookup(ref domain.ElementRef, key domain.ContentKey) (*domain.CacheEntry, error)
	List(ref domain.ElementRef) ([]domain.CacheEntry, error)
	PayloadPath(entry *domain.CacheEntry) string
}

// NewLicenseMCPServer creates an MCP server exposing the scan cache and, when
// outputDir is set, the report of a finished run.
func NewLicenseMCPServer(store CacheReader, outputDir, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"bst-license-checker",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, store, outputDir)
	registerResources(s, outputDir)

	return s
}
