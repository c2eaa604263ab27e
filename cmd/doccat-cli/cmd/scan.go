package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"doccat/internal/application/commands"
)

type scanReport struct {
	New        []string `json:"new" yaml:"new"`
	Changed    []string `json:"changed" yaml:"changed"`
	Removed    []string `json:"removed" yaml:"removed"`
	Unchanged  int      `json:"unchanged" yaml:"unchanged"`
	StateReset bool     `json:"state_reset,omitempty" yaml:"state_reset,omitempty"`
}

func newScanCmd(s *session) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Show new, changed and removed documents",
		Long: `Scan the document root and compare it with the stored fingerprints.
Nothing is written.

Examples:
  doccat-cli scan
  doccat-cli scan --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.NewScanCommand(s.app.Runner).Execute(cmd.Context())
			if err != nil {
				return err
			}

			report := scanReport{
				New:        result.Diff.New,
				Changed:    result.Diff.Changed,
				Removed:    result.Diff.Removed,
				Unchanged:  len(result.Diff.Unchanged),
				StateReset: result.StateReset,
			}
			return writeReport(cmd.OutOrStdout(), format, report, func(w io.Writer) {
				fmt.Fprintln(w, result.Message)
				printList(w, "new", result.Diff.New)
				printList(w, "changed", result.Diff.Changed)
				printList(w, "removed", result.Diff.Removed)
			})
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}
