package main

import (
	"fmt"

	"github.com/spboyer/panelscore/internal/cache"
	"github.com/spf13/cobra"
)

func newCacheCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the judge response cache",
		Long: `Manage the judge response cache.

The cache stores judge responses so repeated runs over the same samples
skip the LLM call. Entries are keyed by judge name and prompt.`,
	}

	cmd.AddCommand(newCacheClearCommand(g))

	return cmd
}

func newCacheClearCommand(g *globalOptions) *cobra.Command {
	var cacheDir string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the judge response cache",
		Long: `Clear all cached judge responses.

The next judge run will call every judge again.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := cacheDir
			if dir == "" {
				cfg, err := g.loadConfig(cmd.Context())
				if err != nil {
					return err
				}
				dir = cfg.CacheDir()
			}

			c, err := cache.New(dir)
			if err != nil {
				return err
			}
			n := c.Len()
			if err := c.Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s (%d entries)\n", dir, n)
			return nil
		},
	}

	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Cache directory to clear (default: from config)")

	return cmd
}
