package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"doccat/internal/application/commands"
)

type entryReport struct {
	DataPath    string `json:"data_path" yaml:"data_path"`
	DerivedLink string `json:"derived_link,omitempty" yaml:"derived_link,omitempty"`
	Title       string `json:"title" yaml:"title"`
	Tags        string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

type sectionReport struct {
	Name    string        `json:"name" yaml:"name"`
	Entries []entryReport `json:"entries" yaml:"entries"`
}

type listReport struct {
	Sections   []sectionReport `json:"sections" yaml:"sections"`
	Duplicates []string        `json:"duplicate_paths,omitempty" yaml:"duplicate_paths,omitempty"`
}

func newListCmd(s *session) *cobra.Command {
	var (
		format   string
		sections bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the catalog's sections and entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.NewListCommand(s.app.Runner).Execute(cmd.Context())
			if err != nil {
				return err
			}

			report := listReport{Sections: []sectionReport{}, Duplicates: result.Duplicates}
			for _, sec := range result.Catalog.Sections {
				sr := sectionReport{Name: sec.Name, Entries: []entryReport{}}
				for _, e := range sec.Entries {
					sr.Entries = append(sr.Entries, entryReport{
						DataPath:    e.DataPath,
						DerivedLink: e.DerivedLink,
						Title:       e.Title,
						Tags:        e.Tags,
					})
				}
				report.Sections = append(report.Sections, sr)
			}

			return writeReport(cmd.OutOrStdout(), format, report, func(w io.Writer) {
				for _, sec := range report.Sections {
					fmt.Fprintf(w, "%s (%d)\n", sec.Name, len(sec.Entries))
					if sections {
						continue
					}
					for _, e := range sec.Entries {
						fmt.Fprintf(w, "  %s  %s\n", e.DataPath, e.Title)
					}
				}
				for _, p := range result.Duplicates {
					fmt.Fprintf(w, "Warning: %s is catalogued more than once\n", p)
				}
				fmt.Fprintln(w, result.Message)
			})
		},
	}
	cmd.Flags().BoolVarP(&sections, "sections", "s", false, "list section names only")
	addFormatFlag(cmd, &format)
	return cmd
}
