package main

import (
	"github.com/spf13/cobra"

	"github.com/zero-day-ai/fraudgraph/cmd/fraudgraph/internal"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect fraudgraph configuration",
	Long: `Configuration is read from ~/.fraudgraph/config.yaml (or --config),
then overridden by FRAUDGRAPH_* environment variables such as
FRAUDGRAPH_NEO4J_URI or FRAUDGRAPH_API_ALLOW_RAW_QUERIES.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long:  `Print the effective configuration, after defaults and environment overrides, as YAML. The Neo4j password is masked.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if current == nil || current.cfg == nil {
			return internal.NewCLIError(internal.ExitConfigError, "configuration not loaded")
		}
		out, err := current.cfg.YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
