package cmd

import (
	"github.com/spf13/cobra"

	"doccat/internal/application/commands"
)

func newConnectCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Add entries for derived renditions of catalogued documents",
		Long: `Give every derived rendition (for example md_outputs/report.md) whose
source document is catalogued its own entry, linked back to the source.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.NewConnectCommand(s.app.Runner, s.dryRun).Execute(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printList(out, "link", result.Linked)
			printOutcome(out, result.Message, result.Outcome)
			return nil
		},
	}
}
