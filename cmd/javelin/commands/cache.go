package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clean the persistent unit cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Display command usage help without returning an error
			_ = cmd.Help()
			return nil
		},
	}

	clean := &cobra.Command{
		Use:   "clean",
		Short: "Remove the persistent unit cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.CacheClean(cmd.Context())
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Print the size of the persistent unit cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			return c.app.CacheStats(cmd.Context(), asJSON)
		},
	}
	stats.Flags().Bool("json", false, "Write the statistics as JSON")

	cmd.AddCommand(clean, stats)
	return cmd
}
