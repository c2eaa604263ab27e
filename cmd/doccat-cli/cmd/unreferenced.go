package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"doccat/internal/application/commands"
)

type fileReport struct {
	Path    string `json:"path" yaml:"path"`
	Size    int64  `json:"size" yaml:"size"`
	Derived bool   `json:"derived,omitempty" yaml:"derived,omitempty"`
}

type unreferencedReport struct {
	Scanned int          `json:"scanned" yaml:"scanned"`
	Files   []fileReport `json:"files" yaml:"files"`
}

func newListUnreferencedCmd(s *session) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list-unreferenced",
		Short: "List documents that no catalog entry refers to",
		Long: `List the files under the document root that are neither an entry's data
path nor a companion link. Nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.NewListUnreferencedCommand(s.app.Runner).Execute(cmd.Context())
			if err != nil {
				return err
			}

			report := unreferencedReport{Scanned: result.Scanned, Files: []fileReport{}}
			for _, f := range result.Files {
				report.Files = append(report.Files, fileReport{Path: f.Path, Size: f.Size, Derived: f.Derived})
			}
			return writeReport(cmd.OutOrStdout(), format, report, func(w io.Writer) {
				for _, f := range result.Files {
					fmt.Fprintln(w, f.Path)
				}
				fmt.Fprintln(w, result.Message)
			})
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}
