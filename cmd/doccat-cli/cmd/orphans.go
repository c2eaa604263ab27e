package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"doccat/internal/application/commands"
)

type orphansReport struct {
	Orphans []string `json:"orphans" yaml:"orphans"`
	Pruned  bool     `json:"pruned" yaml:"pruned"`
}

func newOrphansCmd(s *session) *cobra.Command {
	var (
		prune  bool
		format string
	)
	cmd := &cobra.Command{
		Use:   "orphans",
		Short: "Report fingerprint records without a catalog entry",
		Long: `List fingerprint records whose path no catalog entry refers to. With
--prune the records are removed from the state. The catalog is never
modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.NewOrphansCommand(s.app.Runner, prune, s.dryRun).Execute(cmd.Context())
			if err != nil {
				return err
			}

			report := orphansReport{Orphans: result.Orphans, Pruned: result.Pruned}
			if report.Orphans == nil {
				report.Orphans = []string{}
			}
			return writeReport(cmd.OutOrStdout(), format, report, func(w io.Writer) {
				for _, p := range result.Orphans {
					fmt.Fprintln(w, p)
				}
				fmt.Fprintln(w, result.Message)
			})
		},
	}
	cmd.Flags().BoolVar(&prune, "prune", false, "remove the orphaned records")
	addFormatFlag(cmd, &format)
	return cmd
}
