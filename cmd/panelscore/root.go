package main

import (
	"context"
	"log/slog"

	"github.com/spboyer/panelscore/internal/projectconfig"
	"github.com/spf13/cobra"
)

var version = "dev"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	debug     bool
	configDir string
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "panelscore",
		Short: "Score classifier outputs and judge them with a panel of LLMs",
		Long: `panelscore evaluates the outputs of an LLM classification pipeline.

It scores classifier outputs against ground truth with confusion-matrix
metrics, judges outputs against rubrics with a panel of LLM judges, and
audits judge scores for systematic bias.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.configDir, "config", ".", "Directory to search upwards for "+projectconfig.FileName)
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if opts.debug {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newScoreCommand(opts))
	cmd.AddCommand(newJudgeCommand(opts))
	cmd.AddCommand(newAuditCommand(opts))
	cmd.AddCommand(newKappaCommand())
	cmd.AddCommand(newCalibrateCommand())
	cmd.AddCommand(newRubricsCommand(opts))
	cmd.AddCommand(newCacheCommand(opts))
	cmd.AddCommand(newSessionCommand(opts))
	cmd.AddCommand(newInitCommand())

	return cmd
}

// loadConfig loads the project configuration for a command run.
func (o *globalOptions) loadConfig(ctx context.Context) (*projectconfig.ProjectConfig, error) {
	return projectconfig.Load(ctx, o.configDir)
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
