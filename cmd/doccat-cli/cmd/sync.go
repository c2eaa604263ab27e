package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"doccat/internal/application/commands"
)

func newSyncCmd(s *session) *cobra.Command {
	var suggest bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Add entries for new documents and remove deleted ones",
		Long: `Scan the document root, insert an entry for every new document, delete
the entries of removed documents and record the fingerprints.

New documents are filed by the category rules. With --suggest the assistant
proposes titles, descriptions and categories; if it is unavailable the rules
apply.

Examples:
  doccat-cli sync --dry-run
  doccat-cli sync --suggest`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.NewSyncCommand(s.app.Runner, s.dryRun, suggest).Execute(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printOutcome(out, result.Message, result.Outcome)
			if result.StateReset {
				fmt.Fprintln(out, "Warning: fingerprint state was unreadable and has been rebuilt")
			}
			if s.dryRun && result.Outcome != nil && result.Outcome.Preview != "" {
				fmt.Fprintf(out, "Dry run: %d edit(s) previewed, nothing written\n", result.Outcome.Applied())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&suggest, "suggest", false, "ask the assistant for entry metadata")
	return cmd
}
