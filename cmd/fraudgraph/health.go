package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/fraudgraph/cmd/fraudgraph/internal"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check Neo4j connectivity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close(ctx)

		status := rt.client.Health(ctx)
		out := formatter(cmd)
		if jsonOutput(cmd) {
			if err := out.PrintJSON(status); err != nil {
				return err
			}
		} else {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Graph: %s", status.State)
			if status.Message != "" {
				fmt.Fprintf(w, " (%s)", status.Message)
			}
			fmt.Fprintf(w, " latency=%s\n", status.Latency)
		}

		if !status.IsHealthy() {
			return internal.NewCLIError(internal.ExitDatabaseError, fmt.Sprintf("graph is %s", status.State))
		}
		return nil
	},
}
