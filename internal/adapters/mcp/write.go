package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"doccat/internal/application/commands"
)

// RegisterWriteTools adds the catalog-modifying tools to the MCP server.
// Every tool accepts dry_run.
func RegisterWriteTools(s *server.MCPServer, runner *commands.Runner) {
	s.AddTool(syncTool(), syncHandler(runner))
	s.AddTool(mergeTool(), mergeHandler(runner))
	s.AddTool(relocateTool(), relocateHandler(runner))
	s.AddTool(pruneOrphansTool(), pruneOrphansHandler(runner))
}

func dryRunOption() mcp.ToolOption {
	return mcp.WithBoolean("dry_run",
		mcp.Description("Plan and preview without writing the catalog or the state"),
	)
}

// --- sync ---

func syncTool() mcp.Tool {
	return mcp.NewTool("sync",
		mcp.WithDescription("Add entries for new documents and remove entries for deleted ones, then record fingerprints."),
		dryRunOption(),
		mcp.WithBoolean("suggest",
			mcp.Description("Ask the assistant for titles, descriptions and categories of new documents"),
		),
	)
}

func syncHandler(runner *commands.Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dryRun := req.GetBool("dry_run", false)
		suggest := req.GetBool("suggest", false)

		result, err := commands.NewSyncCommand(runner, dryRun, suggest).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(withOutcome(result.Message, result.Outcome)), nil
	}
}

// --- merge ---

func mergeTool() mcp.Tool {
	return mcp.NewTool("merge",
		mcp.WithDescription("Merge category sections whose names differ only in case or spacing into the first one."),
		dryRunOption(),
	)
}

func mergeHandler(runner *commands.Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dryRun := req.GetBool("dry_run", false)

		result, err := commands.NewMergeCommand(runner, dryRun).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(withOutcome(result.Message, result.Outcome)), nil
	}
}

// --- relocate ---

func relocateTool() mcp.Tool {
	return mcp.NewTool("relocate",
		mcp.WithDescription("Move one entry to another category, creating the category if needed. Rewrites the entry's tags."),
		mcp.WithString("data_path",
			mcp.Description("Data path of the entry, e.g. ./reports/q3.pdf"),
			mcp.Required(),
		),
		mcp.WithString("category",
			mcp.Description("Destination category name"),
			mcp.Required(),
		),
		dryRunOption(),
	)
}

func relocateHandler(runner *commands.Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dataPath := req.GetString("data_path", "")
		category := req.GetString("category", "")
		dryRun := req.GetBool("dry_run", false)

		result, err := commands.NewRelocateCommand(runner, dataPath, category, dryRun).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(withOutcome(result.Message, result.Outcome)), nil
	}
}

// --- prune_orphans ---

func pruneOrphansTool() mcp.Tool {
	return mcp.NewTool("prune_orphans",
		mcp.WithDescription("Remove fingerprint records of files that have no catalog entry. The catalog is not modified."),
		dryRunOption(),
	)
}

func pruneOrphansHandler(runner *commands.Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dryRun := req.GetBool("dry_run", false)

		result, err := commands.NewOrphansCommand(runner, true, dryRun).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		var sb strings.Builder
		sb.WriteString(result.Message + "\n")
		writePaths(&sb, "orphan", result.Orphans)
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// withOutcome appends conflicts, skipped edits and the backup location to
// a message
func withOutcome(message string, out *commands.Outcome) string {
	var sb strings.Builder
	sb.WriteString(message + "\n")
	for _, c := range out.PlanConflicts() {
		fmt.Fprintf(&sb, "conflict %s: %s\n", c.Key, c.Reason)
	}
	for _, c := range out.Skipped() {
		fmt.Fprintf(&sb, "skipped %s: %s\n", c.Key, c.Reason)
	}
	if out != nil && out.Backup != "" {
		fmt.Fprintf(&sb, "backup %s\n", out.Backup)
	}
	return sb.String()
}
