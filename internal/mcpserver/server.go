// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes specsync capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/specsync"
)

const serverInstructions = `specsync MCP server: diffs OpenAPI JSON documents, applies persisted fix sets, and reconciles fixes across upstream updates.

Documents are provided per call as a file path or inline content; nothing is fetched over the network. Array elements are addressed by content fingerprint, so upstream reordering never produces differences or breaks fix paths.

Typical flow after a vendor update:
1. diff the previous upstream snapshot against the new one
2. reconcile with the fix store to prune obsolete fixes and re-apply the rest
3. review unresolved fixes and new candidates from the reconcile report`

// Run starts the MCP server over stdio and blocks until the client
// disconnects or the context is cancelled.
func Run(ctx context.Context) error {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "specsync", Version: specsync.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "diff",
		Description: "Compare two versions of the same OpenAPI JSON document and report structural differences. Array elements are matched by content fingerprint, so pure reordering reports no changes. Each change carries a fingerprint-based address usable as a fix path.",
	}, handleDiff)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "apply",
		Description: "Apply a persisted fix set to an OpenAPI JSON document and return the corrected document. Application is idempotent; fixes whose targets cannot be located are reported as unresolved, never silently dropped. Use output to write to a file instead of returning the document inline.",
	}, handleApply)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reconcile",
		Description: "Reconcile a fix set across an upstream document update. Prunes fixes the update made obsolete, applies the retained fixes to the new upstream, and reports unresolved fixes plus upstream changes not covered by any fix. Use dry_run=true to preview without writing output files.",
	}, handleReconcile)
}

func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
