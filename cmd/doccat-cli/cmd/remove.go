package cmd

import (
	"github.com/spf13/cobra"

	"doccat/internal/application/commands"
)

func newRemoveCmd(s *session) *cobra.Command {
	var patterns []string
	cmd := &cobra.Command{
		Use:   "remove --pattern RE [--pattern RE...]",
		Short: "Remove entries whose data path matches a pattern",
		Long: `Delete every entry whose data path matches one of the regular
expressions. Fingerprints are kept, so sync does not add the entries back
while the files stay on disk.

Example:
  doccat-cli remove --pattern '^\./drafts/' --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.NewRemoveCommand(s.app.Runner, patterns, s.dryRun).Execute(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printList(out, "remove", result.Removed)
			printOutcome(out, result.Message, result.Outcome)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&patterns, "pattern", "p", nil, "regular expression matched against data paths")
	_ = cmd.MarkFlagRequired("pattern")
	return cmd
}
