package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"doccat/internal/application/commands"
)

func newInitCmd(s *session) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty catalog",
		Long: `Write a fresh catalog from the built-in template at the configured path.
An existing catalog is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := s.app.Runner
			if s.dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would create catalog %s\n", runner.Catalog().Path())
				return nil
			}
			result, err := commands.NewInitCommand(runner, title).Execute(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "Document Catalog", "catalog page title")
	return cmd
}
