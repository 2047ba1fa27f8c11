package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spboyer/panelscore/internal/models"
	"github.com/spboyer/panelscore/internal/projectconfig"
	"github.com/spboyer/panelscore/internal/validation"
	"github.com/spf13/cobra"
)

func newRubricsCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rubrics",
		Short: "Inspect and validate rubric files",
	}

	cmd.AddCommand(newRubricsValidateCommand(g))
	cmd.AddCommand(newRubricsListCommand(g))

	return cmd
}

func newRubricsValidateCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [rubric-file]",
		Short: "Validate a rubric file and the project configuration",
		Long: `Validate a rubric file against the rubric JSON schema. The project's
.panelscore.yaml, when present, is validated as well.

Without an argument the rubrics path from .panelscore.yaml is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			path := cfg.RubricsPath()
			if len(args) == 1 {
				path = args[0]
			}

			out := cmd.OutOrStdout()
			failed := false

			errs, err := validation.ValidateRubricFile(path)
			if err != nil {
				return err
			}
			failed = printValidation(out, path, errs) || failed

			projectPath := filepath.Join(cfg.Dir, projectconfig.FileName)
			if projectErrs, err := validation.ValidateProjectFile(projectPath); err == nil {
				failed = printValidation(out, projectPath, projectErrs) || failed
			}

			if failed {
				return errors.New("validation failed")
			}
			return nil
		},
	}
}

func printValidation(out io.Writer, path string, errs []string) bool {
	if len(errs) == 0 {
		fmt.Fprintf(out, "✓ %s\n", path)
		return false
	}
	fmt.Fprintf(out, "✗ %s\n", path)
	for _, e := range errs {
		fmt.Fprintf(out, "    %s\n", e)
	}
	return true
}

func newRubricsListCommand(g *globalOptions) *cobra.Command {
	var module string
	cmd := &cobra.Command{
		Use:   "list [rubric-file]",
		Short: "List the rubrics and judge panel in a rubric file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			path := cfg.RubricsPath()
			if len(args) == 1 {
				path = args[0]
			}
			set, err := loadRubrics(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var rubrics []*models.Rubric
			if module != "" {
				rubrics = set.ForModule(module)
			} else {
				for _, id := range set.IDs() {
					rubrics = append(rubrics, set.Get(id))
				}
			}
			for _, r := range rubrics {
				fmt.Fprintf(out, "%s [%s] %s\n", r.ID, r.Module, r.Criterion)
				if len(r.Dimensions) > 0 {
					fmt.Fprintf(out, "    dimensions: %s\n", strings.Join(r.Dimensions, ", "))
				}
			}

			fmt.Fprintln(out, "\nPanel:")
			for _, m := range set.Panel() {
				fmt.Fprintf(out, "  %s\n", m.DisplayName())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&module, "module", "m", "", "Only list rubrics of this module")
	return cmd
}
