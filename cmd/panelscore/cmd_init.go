package main

import (
	"fmt"

	"github.com/spboyer/panelscore/internal/models"
	"github.com/spboyer/panelscore/internal/projectconfig"
	"github.com/spboyer/panelscore/internal/scaffold"
	"github.com/spf13/cobra"
)

func newInitCommand() *cobra.Command {
	var (
		module  string
		noPanel bool
		force   bool
	)
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a starter rubric file and project configuration",
		Long: `Create rubrics.yaml and .panelscore.yaml in dir (default: the current
directory). The rubric file holds one scored rubric for --module and the
default judge panel.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if err := scaffold.ValidateModule(module); err != nil {
				return err
			}

			var panel []models.PanelMember
			if !noPanel {
				panel = models.DefaultPanel()
			}
			files := map[string]string{
				projectconfig.DefaultRubrics: scaffold.RubricsYAML(module, panel),
				projectconfig.FileName:       scaffold.ProjectYAML(projectconfig.DefaultRubrics),
			}
			written, err := scaffold.WriteFiles(dir, files, []string{projectconfig.DefaultRubrics, projectconfig.FileName}, force)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range written {
				fmt.Fprintf(out, "Created %s\n", p)
			}
			fmt.Fprintln(out, "\nNext: edit the rubric, then run \"panelscore judge <dataset> --mock\" for a dry run.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&module, "module", "m", "M01", "Module id for the starter rubric")
	cmd.Flags().BoolVar(&noPanel, "no-panel", false, "Leave the judge panel out of the rubric file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}
