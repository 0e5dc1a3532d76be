package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/javelin/internal/app"
)

// addCompileFlags registers the flags shared by every command that compiles.
func addCompileFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("no-cache", "n", false, "Ignore the persistent unit cache")
	cmd.Flags().BoolP("verbose", "v", false, "Report every unit error and the debug log")
	cmd.Flags().Bool("strict", false, "Fail when any compilation unit has errors")
	cmd.Flags().Bool("json", false, "Write the log and the results as JSON")
}

func compileOptions(cmd *cobra.Command) app.CompileOptions {
	noCache, _ := cmd.Flags().GetBool("no-cache")
	verbose, _ := cmd.Flags().GetBool("verbose")
	strict, _ := cmd.Flags().GetBool("strict")
	asJSON, _ := cmd.Flags().GetBool("json")
	return app.CompileOptions{
		NoCache: noCache,
		Strict:  strict,
		Verbose: verbose,
		JSON:    asJSON,
	}
}

func (c *CLI) newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile the project sources and build the type model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Compile(cmd.Context(), compileOptions(cmd))
		},
	}
	addCompileFlags(cmd)
	return cmd
}

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Compile the project and recompile changed sources until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Watch(cmd.Context(), compileOptions(cmd))
		},
	}
	addCompileFlags(cmd)
	return cmd
}

func (c *CLI) newTypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types [pattern]",
		Short: "Print the resolved types, optionally filtered by a glob on the qualified name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}
			return c.app.Types(cmd.Context(), pattern, compileOptions(cmd))
		},
	}
	addCompileFlags(cmd)
	return cmd
}
