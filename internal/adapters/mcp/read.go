package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"doccat/internal/application/commands"
	"doccat/internal/domain"
)

// RegisterReadTools adds the read-only catalog tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, runner *commands.Runner) {
	s.AddTool(listSectionsTool(), listSectionsHandler(runner))
	s.AddTool(scanTool(), scanHandler(runner))
	s.AddTool(listUnreferencedTool(), listUnreferencedHandler(runner))
}

// --- list_sections ---

func listSectionsTool() mcp.Tool {
	return mcp.NewTool("list_sections",
		mcp.WithDescription("List the catalog's category sections. With entries=true also lists each entry's data path and title."),
		mcp.WithBoolean("entries",
			mcp.Description("Include the entries of every section"),
		),
	)
}

func listSectionsHandler(runner *commands.Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		withEntries := req.GetBool("entries", false)

		result, err := commands.NewListCommand(runner).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		for _, s := range result.Catalog.Sections {
			fmt.Fprintf(&sb, "%s (%d)\n", s.Name, len(s.Entries))
			if !withEntries {
				continue
			}
			for _, e := range s.Entries {
				fmt.Fprintf(&sb, "  %s  %s\n", e.DataPath, e.Title)
			}
		}
		if len(result.Duplicates) > 0 {
			fmt.Fprintf(&sb, "Duplicated data paths: %s\n", strings.Join(result.Duplicates, ", "))
		}
		if sb.Len() == 0 {
			return mcp.NewToolResultText("No sections."), nil
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- scan ---

func scanTool() mcp.Tool {
	return mcp.NewTool("scan",
		mcp.WithDescription("Scan the document root and report new, changed and removed files compared to the stored fingerprints. Writes nothing."),
	)
}

func scanHandler(runner *commands.Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewScanCommand(runner).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		sb.WriteString(result.Message + "\n")
		writePaths(&sb, "new", result.Diff.New)
		writePaths(&sb, "changed", result.Diff.Changed)
		writePaths(&sb, "removed", result.Diff.Removed)
		if result.StateReset {
			sb.WriteString("warning: fingerprint state was unreadable and treated as empty\n")
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- list_unreferenced ---

func listUnreferencedTool() mcp.Tool {
	return mcp.NewTool("list_unreferenced",
		mcp.WithDescription("List documents on disk that no catalog entry refers to."),
	)
}

func listUnreferencedHandler(runner *commands.Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewListUnreferencedCommand(runner).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if len(result.Files) == 0 {
			return mcp.NewToolResultText(result.Message), nil
		}
		return formatEntities(result.Files, formatCandidate)
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatCandidate(c domain.CandidateFile) string {
	return fmt.Sprintf("%s  %d bytes", c.Path, c.Size)
}

func writePaths(sb *strings.Builder, label string, paths []string) {
	for _, p := range paths {
		fmt.Fprintf(sb, "%s %s\n", label, p)
	}
}
