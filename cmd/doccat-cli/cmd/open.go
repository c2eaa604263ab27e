package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOpenCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "open [data-path]",
		Short: "Open the catalog or a document in the system viewer",
		Example: `  doccat-cli open
  doccat-cli open ./reports/q3.pdf`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			if err := s.app.Opener.OpenPath(target); err != nil {
				return err
			}
			if target == "" {
				target = s.app.Runner.Catalog().Path()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", target)
			return nil
		},
	}
}
