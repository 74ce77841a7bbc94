package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/cache"
	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/report"
	"github.com/bst-license-checker/bst-license-checker/internal/domain"
	"github.com/bst-license-checker/bst-license-checker/internal/logger"
)

func seededStore(t *testing.T) *cache.Store {
	t.Helper()
	store := cache.New(t.TempDir(), logger.Nop())
	for _, e := range []domain.CacheEntry{
		{Ref: "components/zlib.bst", Key: "k1", Status: domain.StatusCheckoutSucceeded, Licenses: []string{"zlib/libpng"}},
		{Ref: "components/zlib.bst", Key: "k2", Status: domain.StatusCheckoutSucceeded, Licenses: []string{"zlib/libpng", "MIT License"}},
	} {
		_, err := store.Store(e, []byte("./zlib.c\tzlib/libpng\t\n"))
		require.NoError(t, err)
	}
	return store
}

func call(t *testing.T, h func(context.Context, mcplib.CallToolRequest) (*mcplib.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	req := mcplib.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func TestCacheLookup(t *testing.T) {
	store := seededStore(t)
	h := handleCacheLookup(store)

	text, isErr := call(t, h, map[string]any{"element": "components/zlib.bst", "key": "k2", "include_output": true})
	require.False(t, isErr, text)
	var got lookupResult
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Equal(t, []string{"zlib/libpng", "MIT License"}, got.Entry.Licenses)
	assert.Equal(t, filepath.Join(store.Dir(), "components-zlib.bst--k2.licensecheck_output.txt"), got.OutputPath)
	assert.Contains(t, got.Output, "./zlib.c")

	text, isErr = call(t, h, map[string]any{"element": "components/zlib.bst", "key": "k9"})
	assert.True(t, isErr)
	assert.Contains(t, text, "no cache entry")

	_, isErr = call(t, h, map[string]any{"element": "components/zlib.bst"})
	assert.True(t, isErr, "key is required")
}

func TestCacheList(t *testing.T) {
	h := handleCacheList(seededStore(t))

	text, isErr := call(t, h, map[string]any{"element": "components/zlib.bst"})
	require.False(t, isErr, text)
	var entries []domain.CacheEntry
	require.NoError(t, json.Unmarshal([]byte(text), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ContentKey("k1"), entries[0].Key)

	text, isErr = call(t, h, map[string]any{"element": "unknown.bst"})
	require.False(t, isErr)
	assert.JSONEq(t, "[]", text)
}

func TestReport(t *testing.T) {
	out := t.TempDir()
	r := &domain.Report{Results: []domain.ScanResult{
		{Ref: "a.bst", Key: "ka", Status: domain.StatusNoSources, Licenses: []string{}},
	}}
	require.NoError(t, report.WriteJSON(r, out))

	text, isErr := call(t, handleReport(out), nil)
	require.False(t, isErr, text)
	assert.Contains(t, text, `"dependency-name": "a.bst"`)

	_, isErr = call(t, handleReport(""), nil)
	assert.True(t, isErr)

	contents, err := handleReportResource(out)(context.Background(), mcplib.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, reportURI, contents[0].(mcplib.TextResourceContents).URI)
}
