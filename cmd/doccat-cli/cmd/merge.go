package cmd

import (
	"github.com/spf13/cobra"

	"doccat/internal/application/commands"
)

func newMergeCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "merge",
		Short: "Merge categories whose names differ only in case or spacing",
		Long: `Merge duplicate category sections into the first one. Entries keep their
order; an entry already present in the surviving section is dropped.

Example:
  doccat-cli merge --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.NewMergeCommand(s.app.Runner, s.dryRun).Execute(cmd.Context())
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), result.Message, result.Outcome)
			return nil
		},
	}
}
