package cmd

import (
	"github.com/spf13/cobra"

	"doccat/internal/application/commands"
)

func newRelocateCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "relocate <data-path> <category>",
		Short: "Move an entry to another category",
		Long: `Move one entry to a category, creating the category if it does not exist.
The entry's tag line is rewritten to the new category.

Examples:
  doccat-cli relocate ./reports/q3.pdf Finance
  doccat-cli relocate ./notes.md "Meeting Notes" --dry-run`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			relocateCmd := commands.NewRelocateCommand(s.app.Runner, args[0], args[1], s.dryRun)
			result, err := relocateCmd.Execute(cmd.Context())
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), result.Message, result.Outcome)
			return nil
		},
	}
}
