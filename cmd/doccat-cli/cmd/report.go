package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"doccat/internal/application/commands"
)

// Report formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

func addFormatFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "format", "f", FormatText, "output format (text, json, yaml)")
}

// writeReport encodes v in the requested format; text delegates to the
// command's own printer
func writeReport(w io.Writer, format string, v any, text func(io.Writer)) error {
	switch format {
	case FormatText, "":
		text(w)
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q: use %s, %s or %s", format, FormatText, FormatJSON, FormatYAML)
	}
}

// printOutcome writes the command message followed by planning conflicts,
// skipped edits and the backup location
func printOutcome(w io.Writer, message string, out *commands.Outcome) {
	fmt.Fprintln(w, message)
	for _, c := range out.PlanConflicts() {
		fmt.Fprintf(w, "  conflict %s: %s\n", c.Key, c.Reason)
	}
	for _, c := range out.Skipped() {
		fmt.Fprintf(w, "  skipped %s: %s\n", c.Key, c.Reason)
	}
	if out != nil && out.Backup != "" {
		fmt.Fprintf(w, "Backup: %s\n", out.Backup)
	}
}

func printList(w io.Writer, label string, items []string) {
	for _, item := range items {
		fmt.Fprintf(w, "  %-8s %s\n", label, item)
	}
}
