package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "confmorph",
	Short: "Convert configuration files between tool dialects",
	Long: `Confmorph converts MCP server configuration documents between the
dialects expected by different coding tools. It sniffs the input format
(JSON, YAML, TOML, TOON or plain text), asks a language model to map the
content onto the target schema, and reconciles the result with any file
already on disk.

Available commands:
  convert    - Convert a configuration document to a target schema
  providers  - List registered model providers and their availability
  models     - List the models a provider offers
  version    - Print version information

Provider selection defaults to "auto", which picks the cheapest provider
with usable credentials.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. It is called by main.main().
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
